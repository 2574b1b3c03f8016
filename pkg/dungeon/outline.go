package dungeon

import (
	"geballer-core/internal/domain"
	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

// Outline превращает клеточную карту в стены: каждая граница пол/камень
// становится отрезком, соседние отрезки на одной линии сливаются.
// Отрезки ориентированы так, что пол лежит справа от A→B.
func Outline(width, height int, floor func(x, y int) bool) []*geom.TypedSegment {
	var walls []*geom.TypedSegment
	wall := func(ax, ay, bx, by int) {
		walls = append(walls, geom.NewTypedSegment(
			pixel.V(float64(ax), float64(ay)),
			pixel.V(float64(bx), float64(by)),
			domain.CategoryWall,
		))
	}

	for y := 0; y < height; y++ {
		// Южные грани: камень снизу, идём справа налево
		runs(width, func(x int) bool { return floor(x, y) && !floor(x, y-1) }, func(x0, x1 int) {
			wall(x1, y, x0, y)
		})
		// Северные грани: камень сверху, слева направо
		runs(width, func(x int) bool { return floor(x, y) && !floor(x, y+1) }, func(x0, x1 int) {
			wall(x0, y+1, x1, y+1)
		})
	}
	for x := 0; x < width; x++ {
		// Западные грани: снизу вверх
		runs(height, func(y int) bool { return floor(x, y) && !floor(x-1, y) }, func(y0, y1 int) {
			wall(x, y0, x, y1)
		})
		// Восточные грани: сверху вниз
		runs(height, func(y int) bool { return floor(x, y) && !floor(x+1, y) }, func(y0, y1 int) {
			wall(x+1, y1, x+1, y0)
		})
	}
	return walls
}

// runs вызывает emit для каждого максимального отрезка [from, to), на
// котором on истинно.
func runs(n int, on func(i int) bool, emit func(from, to int)) {
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && on(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			emit(start, i)
			start = -1
		}
	}
}
