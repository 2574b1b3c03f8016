package engine

import (
	"math"

	"geballer-core/internal/geom"
	"geballer-core/internal/perception"
	"geballer-core/pkg/api"

	"github.com/faiface/pixel"
)

// View возвращает DTO агента.
func (w *World) View(id string) (api.AgentView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return api.AgentView{}, false
	}
	return w.agentView(a), true
}

// MapOf возвращает всё, что агент запомнил об уровне.
func (w *World) MapOf(id string) (api.MapView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return api.MapView{}, false
	}

	m := api.MapView{
		Agent:    a.ID,
		Level:    w.level.ID,
		Segments: []api.SegmentView{},
		Entities: []api.CircleView{},
	}
	for _, s := range a.Memory.Segments() {
		m.Segments = append(m.Segments, toSegmentView(s))
	}
	for _, c := range a.Memory.Entities() {
		m.Entities = append(m.Entities, api.CircleView{
			Center:   toVec(c.Center),
			Radius:   c.Radius,
			Category: c.Category,
		})
	}
	return m, true
}

// buildUpdate создает персональный слепок для наблюдателей агента.
func (w *World) buildUpdate(a *Agent) api.TickUpdate {
	u := api.TickUpdate{
		Type:  "TICK",
		Tick:  w.tick,
		Agent: w.agentView(a),
	}
	if a.Last != nil {
		for _, t := range a.Last.Triangles() {
			u.Triangles = append(u.Triangles, toTriangleView(t))
		}
	}
	return u
}

func (w *World) agentView(a *Agent) api.AgentView {
	view := api.AgentView{
		ID:            a.ID,
		ItemID:        a.Item.String(),
		Level:         w.level.ID,
		Facing:        a.Facing,
		Navigator:     a.Nav.State().String(),
		PathLegs:      len(a.Path),
		KnownSegments: len(a.Memory.Segments()),
		KnownEntities: len(a.Memory.Entities()),
	}
	if it := w.level.Item(a.Item); it != nil {
		view.Position = toVec(it.Position())
	}
	if a.Target != nil {
		t := toVec(*a.Target)
		view.Target = &t
	}
	return view
}

func toVec(v pixel.Vec) api.Vec { return api.Vec{X: v.X, Y: v.Y} }

func toSegmentView(s *geom.TypedSegment) api.SegmentView {
	return api.SegmentView{A: toVec(s.A), B: toVec(s.B), Category: s.Category}
}

// toTriangleView переводит клин в DTO. JSON не умеет бесконечности,
// поэтому для открытых клиньев расстояния опускаются.
func toTriangleView(t perception.Triangle) api.TriangleView {
	v := api.TriangleView{
		Right:    t.RightAngle.Degrees(),
		Left:     t.LeftAngle.Degrees(),
		Category: t.Category,
	}
	if t.Segment == nil || math.IsInf(t.LeftDist, 0) || math.IsInf(t.RightDist, 0) {
		v.Open = true
		return v
	}
	v.RightDist = t.RightDist
	v.LeftDist = t.LeftDist
	v.Range = &[2]float64{t.Range.From, t.Range.To}
	return v
}
