package obj

import (
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
)

// AddComponent attaches c to the entity of g and refreshes system matching.
// It returns c so calls can be chained into further setup. A nil c leaves the
// entity unchanged and reports ErrNilComponent.
func AddComponent[T any](g *GameObject, kind component.ComponentKind[T], c *T) (*T, error) {
	const op = "AddComponent"
	if err := g.check(op); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, g.session.report(op, g, SeveritySoft, ErrNilComponent)
	}
	w := g.session.world
	if err := ecs.Add(w, g.entity, kind, c); err != nil {
		return nil, g.session.report(op, g, SeveritySoft, err)
	}
	w.Refresh(g.entity)
	if kind.ID() == component.PositionComponent.Kind().ID() {
		g.relinkPosition()
	}
	return c, nil
}

// GetComponent returns the component of kind attached to g.
func GetComponent[T any](g *GameObject, kind component.ComponentKind[T]) (*T, bool) {
	if g.destroyed {
		return nil, false
	}
	return ecs.Get(g.session.world, g.entity, kind)
}

// HasComponent reports whether a component of kind is attached to g.
func HasComponent[T any](g *GameObject, kind component.ComponentKind[T]) bool {
	_, ok := GetComponent(g, kind)
	return ok
}

// RemoveComponent detaches the component of kind and refreshes system
// matching. The Position component is mandatory and cannot be removed.
func RemoveComponent[T any](g *GameObject, kind component.ComponentKind[T]) error {
	const op = "RemoveComponent"
	if err := g.check(op); err != nil {
		return err
	}
	if kind.ID() == component.PositionComponent.Kind().ID() {
		return g.session.report(op, g, SeveritySoft, ErrPositionRequired)
	}
	w := g.session.world
	if !ecs.Remove(w, g.entity, kind) {
		return g.session.report(op, g, SeveritySoft, ErrNoComponent)
	}
	w.Refresh(g.entity)
	return nil
}

// relinkPosition restores back-references after the Position of g was
// replaced: its own link to the parent and its children's links to it.
func (g *GameObject) relinkPosition() {
	pos, ok := g.positionComponent()
	if !ok {
		return
	}
	pos.RemoveParentPosition()
	if p, ok := g.Parent(); ok {
		if parentPos, ok := p.positionComponent(); ok {
			pos.SetParentPosition(parentPos)
		}
	}
	for _, child := range g.Children() {
		if childPos, ok := child.positionComponent(); ok {
			childPos.SetParentPosition(pos)
		}
	}
}
