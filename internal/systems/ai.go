package systems

import (
	"math"

	"geballer-core/internal/geom"
	"geballer-core/internal/perception"
	"geballer-core/pkg/logger"

	"github.com/faiface/pixel"
	"github.com/sirupsen/logrus"
)

// DroidAction: решение разведчика на этот тик.
type DroidAction int

const (
	ActionWait DroidAction = iota
	ActionMove
	ActionTurn
)

func (a DroidAction) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionMove:
		return "move"
	case ActionTurn:
		return "turn"
	}
	return "unknown"
}

const (
	// ExploreReach: дальше этого за один заход не идём.
	ExploreReach = 6.0
	// MinExploreStep: короче этого идти некуда, лучше повернуться.
	MinExploreStep = 1.0
	// wallMargin: зазор до препятствия в конце разведочного хода.
	wallMargin = 0.75
)

// ComputeDroidAction решает, что делать дроиду без цели.
// Смотрит на последнее наблюдение и выбирает самый глубокий клин
// (при равной глубине: самый широкий); цель: точка на его биссектрисе.
// Если всюду тесно, дроид поворачивается на turn радиан.
func ComputeDroidAction(obs *perception.Observation, bounds pixel.Rect, turn float64) (action DroidAction, target pixel.Vec, dFacing float64) {
	if obs == nil {
		return ActionWait, pixel.ZV, 0
	}
	pos := obs.Viewer.Position

	found := false
	var bestReach, bestWidth float64
	for _, t := range obs.Triangles() {
		w := t.Width()
		if t.OutOfView() || w < geom.Epsilon {
			continue
		}
		dir := t.RightAngle.Plus(geom.FromRadians(w / 2))
		reach := math.Min(obs.NearestDistance(dir)-wallMargin, ExploreReach)
		if reach < MinExploreStep {
			continue
		}
		p := pos.Add(dir.Vec().Scaled(reach))
		if !bounds.Contains(p) {
			continue
		}

		deeper := reach > bestReach+geom.Epsilon
		wider := math.Abs(reach-bestReach) <= geom.Epsilon && w > bestWidth
		if !found || deeper || wider {
			found = true
			bestReach, bestWidth = reach, w
			target = p
		}
	}

	entry := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"x":         pos.X,
		"y":         pos.Y,
	})
	if !found {
		entry.Debug("nowhere to go, turning")
		return ActionTurn, pixel.ZV, turn
	}
	entry.WithFields(logrus.Fields{"tx": target.X, "ty": target.Y, "reach": bestReach}).Debug("exploring")
	return ActionMove, target, 0
}
