package engine

import (
	"geballer-core/internal/domain"
	"geballer-core/internal/navigation"
	"geballer-core/internal/perception"

	"github.com/faiface/pixel"
)

// Agent: дроид под управлением движка: тело на уровне, зрение, память
// об увиденном и навигация.
type Agent struct {
	ID          string
	Item        domain.ItemID
	Facing      float64
	FieldOfView float64
	Speeds      navigation.Speeds

	Memory *perception.ObservationMap
	Nav    *navigation.Navigator
	Last   *perception.Observation

	// Path: оставшиеся отрезки пути, Target: куда идём.
	Path   []navigation.Leg
	Target *pixel.Vec

	// generation растёт при каждом принятом запросе пути и смене уровня;
	// результаты других поколений отбрасываются.
	generation uint64
	replan     bool
}

// Generation возвращает поколение текущего запроса пути.
func (a *Agent) Generation() uint64 { return a.generation }

// forget сбрасывает всё, что связано с уровнем.
func (a *Agent) forget() {
	a.Memory.Clear()
	a.Last = nil
	a.Path = nil
	a.Target = nil
	a.replan = false
	a.generation++
}
