package system

import (
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
)

type AnimationSystem struct {
	dt float64
}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{dt: common.FixedStep}
}

func (a *AnimationSystem) Requires() []component.ComponentID {
	return []component.ComponentID{
		component.AnimationComponent.Kind().ID(),
		component.SpriteRendererComponent.Kind().ID(),
	}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	for _, e := range w.Members(a) {
		anim, ok := ecs.Get(w, e, component.AnimationComponent.Kind())
		if !ok {
			continue
		}
		sprite, ok := ecs.Get(w, e, component.SpriteRendererComponent.Kind())
		if !ok {
			continue
		}
		anim.Advance(a.dt)
		if rect, ok := anim.SourceRect(); ok && !rect.Empty() {
			sprite.Source = rect
			sprite.UseSource = true
		}
	}
}
