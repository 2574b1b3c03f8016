package domain

import (
	"fmt"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

// Item: круглый предмет уровня: дроид, враг, колонна, флаг или пуля.
type Item struct {
	ID   ItemID
	Kind ItemKind
	Body geom.Circle
}

// Position возвращает центр тела.
func (i *Item) Position() pixel.Vec { return i.Body.Center }

func (i *Item) String() string {
	return fmt.Sprintf("%s %s", i.ID, &i.Body)
}
