package system

import (
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
)

// MovementSystem integrates accumulated force into local position for
// entities that are not driven by a physics body. Force is in units per
// second.
type MovementSystem struct {
	dt float64
}

func NewMovementSystem(dt float64) *MovementSystem {
	if dt <= 0 {
		dt = common.FixedStep
	}
	return &MovementSystem{dt: dt}
}

func (ms *MovementSystem) Requires() []component.ComponentID {
	return []component.ComponentID{
		component.PositionComponent.Kind().ID(),
		component.VelocityComponent.Kind().ID(),
	}
}

func (ms *MovementSystem) Update(w *ecs.World) {
	for _, e := range w.Members(ms) {
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
			continue
		}
		pos, ok := ecs.Get(w, e, component.PositionComponent.Kind())
		if !ok {
			continue
		}
		vel, ok := ecs.Get(w, e, component.VelocityComponent.Kind())
		if !ok || vel.Force.IsZero() {
			continue
		}
		pos.SetPosition(pos.LocalPosition().Add(vel.Force.Scale(ms.dt)))
	}
}
