package systems

import (
	"geballer-core/internal/geom"
	"geballer-core/internal/navigation"

	"github.com/faiface/pixel"
)

// MovementResult - результат вычисления одного сдвига вдоль пути
type MovementResult struct {
	To      pixel.Vec
	Facing  float64
	Used    float64 // потраченная часть бюджета пути
	LegDone bool    // отрезок пройден до конца
}

// CalculateMove вычисляет сдвиг из pos к концу отрезка leg на расстояние
// не больше budget. Не меняет состояние мира!
// Направление берётся из сдвига; при нулевом сдвиге остаётся facing.
func CalculateMove(pos pixel.Vec, facing float64, leg navigation.Leg, budget float64) MovementResult {
	res := MovementResult{To: leg.To, Facing: facing}

	d := leg.To.Sub(pos).Len()
	if d > budget {
		res.To = pos.Add(leg.To.Sub(pos).Scaled(budget / d))
		res.Used = budget
	} else {
		res.Used = d
		res.LegDone = true
	}

	if h, err := geom.FromVec(res.To.Sub(pos)); err == nil {
		res.Facing = h.Radians()
	}
	return res
}
