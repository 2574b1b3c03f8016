package geom

import (
	"fmt"

	"github.com/faiface/pixel"
)

// Circle: круглая сущность уровня (дроид, враг, препятствие-колонна).
type Circle struct {
	Center   pixel.Vec
	Radius   float64
	Rotation float64
	Category string
}

func (c *Circle) String() string {
	return fmt.Sprintf("%s@(%.3f,%.3f)r%.3f", c.Category, c.Center.X, c.Center.Y, c.Radius)
}

// Silhouette строит синтетический отрезок-силуэт, обращённый к наблюдателю:
// диаметр, перпендикулярный линии взгляда. Если наблюдатель совпадает с
// центром, ok=false.
func (c *Circle) Silhouette(observer pixel.Vec) (*TypedSegment, bool) {
	u, err := FromVec(c.Center.Sub(observer))
	if err != nil {
		return nil, false
	}
	n := pixel.V(-u.Y(), u.X()).Scaled(c.Radius)
	return NewTypedSegment(c.Center.Add(n), c.Center.Sub(n), c.Category), true
}

// Overlaps проверяет, задевает ли круг радиуса radius, движущийся вдоль
// path, этот круг.
func (c *Circle) Overlaps(path pixel.Line, radius float64) bool {
	reach := c.Radius + radius
	return MinDistanceSquared(path, pixel.L(c.Center, c.Center)) < reach*reach
}

// SweepHits проверяет, задевает ли круг радиуса radius, движущийся вдоль
// path, отрезок wall.
func SweepHits(path pixel.Line, radius float64, wall pixel.Line) bool {
	return MinDistanceSquared(path, wall) < radius*radius
}
