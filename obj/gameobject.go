package obj

import (
	"github.com/google/uuid"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
)

// GameObject is the handle game code uses for one entity. It owns its name,
// tag and parent link; the entity and its components belong to the world.
//
// GameObjects are created and destroyed only through a Session. Operations
// that fail return an *Error; for SeveritySoft errors the returned value is
// still the best available result.
type GameObject struct {
	session  *Session
	handle   Handle
	entity   ecs.Entity
	instance uuid.UUID

	name   string
	tag    string
	parent Handle

	destroyed bool
}

func (g *GameObject) Name() string {
	return g.name
}

func (g *GameObject) Tag() string {
	return g.tag
}

func (g *GameObject) SetTag(tag string) {
	g.tag = tag
}

func (g *GameObject) Entity() ecs.Entity {
	return g.entity
}

func (g *GameObject) Handle() Handle {
	return g.handle
}

// InstanceID distinguishes objects across entity slot reuse in logs.
func (g *GameObject) InstanceID() uuid.UUID {
	return g.instance
}

func (g *GameObject) Session() *Session {
	return g.session
}

func (g *GameObject) Destroyed() bool {
	return g.destroyed
}

func (g *GameObject) check(op string) error {
	if g.destroyed {
		return g.session.report(op, g, SeveritySoft, ErrDestroyed)
	}
	return nil
}

func (g *GameObject) positionComponent() (*component.Position, bool) {
	return ecs.Get(g.session.world, g.entity, component.PositionComponent.Kind())
}

func (g *GameObject) velocityComponent() (*component.Velocity, bool) {
	return ecs.Get(g.session.world, g.entity, component.VelocityComponent.Kind())
}

// SetParent makes positions of g relative to p. Cycles are rejected and the
// link is left unchanged. When p has no Position the link is still stored and
// ErrNoParentPosition is returned; p then contributes nothing to Position.
func (g *GameObject) SetParent(p *GameObject) error {
	const op = "SetParent"
	if err := g.check(op); err != nil {
		return err
	}
	if p == nil {
		return g.session.report(op, g, SeveritySoft, ErrNilParent)
	}
	if p.session != g.session {
		return g.session.report(op, g, SeveritySoft, ErrForeignObject)
	}
	if p.destroyed {
		return g.session.report(op, g, SeveritySoft, ErrDestroyed)
	}
	if g.isAncestorOf(p) {
		return g.session.report(op, g, SeveritySoft, ErrParentCycle)
	}

	g.parent = p.handle

	pos, ok := g.positionComponent()
	if !ok {
		return g.session.report(op, g, SeveritySoft, ErrNoPosition)
	}
	parentPos, ok := p.positionComponent()
	if !ok {
		pos.RemoveParentPosition()
		return g.session.report(op, g, SeveritySoft, ErrNoParentPosition)
	}
	pos.SetParentPosition(parentPos)
	return nil
}

// isAncestorOf reports whether g is o or appears in the parent chain of o.
func (g *GameObject) isAncestorOf(o *GameObject) bool {
	steps := g.session.objects.live
	for cur := o; cur != nil && steps >= 0; steps-- {
		if cur == g {
			return true
		}
		next, ok := g.session.objects.get(cur.parent)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

// RemoveParent makes the coordinates of g global again.
func (g *GameObject) RemoveParent() error {
	const op = "RemoveParent"
	if err := g.check(op); err != nil {
		return err
	}
	if !g.parent.Valid() {
		return g.session.report(op, g, SeveritySoft, ErrNoParent)
	}
	g.parent = Handle{}
	if pos, ok := g.positionComponent(); ok {
		pos.RemoveParentPosition()
	}
	return nil
}

// HasParent reports whether a parent link is set. A link to a destroyed
// parent still counts until RemoveParent is called.
func (g *GameObject) HasParent() bool {
	return g.parent.Valid()
}

// Parent returns the live parent, if any.
func (g *GameObject) Parent() (*GameObject, bool) {
	return g.session.objects.get(g.parent)
}

// Children returns live objects whose parent link points at g.
func (g *GameObject) Children() []*GameObject {
	var out []*GameObject
	g.session.objects.each(func(o *GameObject) {
		if o.parent == g.handle {
			out = append(out, o)
		}
	})
	return out
}

// RelativePosition returns the local coordinate, unmodified.
func (g *GameObject) RelativePosition() (common.Vector2D, error) {
	const op = "RelativePosition"
	if err := g.check(op); err != nil {
		return common.Zero, err
	}
	pos, ok := g.positionComponent()
	if !ok {
		return common.Zero, g.session.report(op, g, SeveritySoft, ErrNoPosition)
	}
	return pos.LocalPosition(), nil
}

// Position resolves the world position by adding local coordinates up the
// parent chain. Nothing is cached. A link that lacks a Position contributes
// zero, and a destroyed parent ends the walk; both are reported.
func (g *GameObject) Position() (common.Vector2D, error) {
	const op = "Position"
	if err := g.check(op); err != nil {
		return common.Zero, err
	}

	var (
		world    common.Vector2D
		firstErr error
	)
	fail := func(o *GameObject, err error) {
		reported := g.session.report(op, o, SeveritySoft, err)
		if firstErr == nil {
			firstErr = reported
		}
	}

	steps := g.session.objects.live
	for cur := g; cur != nil; steps-- {
		if steps < 0 {
			fail(g, ErrParentCycle)
			break
		}
		if pos, ok := cur.positionComponent(); ok {
			world = world.Add(pos.LocalPosition())
		} else if cur == g {
			fail(cur, ErrNoPosition)
		} else {
			fail(g, ErrNoParentPosition)
		}

		if !cur.parent.Valid() {
			break
		}
		next, ok := g.session.objects.get(cur.parent)
		if !ok {
			fail(cur, ErrDanglingParent)
			break
		}
		cur = next
	}
	return world, firstErr
}

// PositionPerspective projects the world position into screen space:
//
//	world - (camera - correction) * parallaxIndex + parallaxCompensation
//
// Parallax comes from the SpriteRenderer, else the TextRenderer; objects with
// neither use index 1 and no compensation.
func (g *GameObject) PositionPerspective() (common.Vector2D, error) {
	world, err := g.Position()
	if g.destroyed {
		return common.Zero, err
	}
	cam := g.session.Camera()
	view := cam.CameraPosition().Sub(cam.CameraCorrection())

	index, compensation := 1.0, common.Zero
	if src, ok := g.parallaxSource(); ok {
		index = src.ParallaxIndex()
		compensation = src.ParallaxCompensation()
	}
	return world.Sub(view.Scale(index)).Add(compensation), err
}

func (g *GameObject) parallaxSource() (component.ParallaxSource, bool) {
	w := g.session.world
	if s, ok := ecs.Get(w, g.entity, component.SpriteRendererComponent.Kind()); ok {
		return s, true
	}
	if t, ok := ecs.Get(w, g.entity, component.TextRendererComponent.Kind()); ok {
		return t, true
	}
	return nil, false
}

// SetPosition overwrites the local coordinate only.
func (g *GameObject) SetPosition(v common.Vector2D) error {
	const op = "SetPosition"
	if err := g.check(op); err != nil {
		return err
	}
	pos, ok := g.positionComponent()
	if !ok {
		return g.session.report(op, g, SeveritySoft, ErrNoPosition)
	}
	pos.SetPosition(v)
	return nil
}

func (g *GameObject) SetPositionXY(x, y float64) error {
	return g.SetPosition(common.Vec(x, y))
}

// AddForce accumulates v on the Velocity component. A missing Velocity is a
// halting error.
func (g *GameObject) AddForce(v common.Vector2D) error {
	const op = "AddForce"
	if err := g.check(op); err != nil {
		return err
	}
	vel, ok := g.velocityComponent()
	if !ok {
		return g.session.report(op, g, SeverityHalting, ErrNoVelocity)
	}
	vel.AddVelocity(v)
	return nil
}

func (g *GameObject) AddForceXY(x, y float64) error {
	return g.AddForce(common.Vec(x, y))
}

// ResetForce zeroes the accumulated force. A missing Velocity is a halting
// error.
func (g *GameObject) ResetForce() error {
	const op = "ResetForce"
	if err := g.check(op); err != nil {
		return err
	}
	vel, ok := g.velocityComponent()
	if !ok {
		return g.session.report(op, g, SeverityHalting, ErrNoVelocity)
	}
	vel.ResetVelocity()
	return nil
}

// Force returns the accumulated force.
func (g *GameObject) Force() (common.Vector2D, error) {
	const op = "Force"
	if err := g.check(op); err != nil {
		return common.Zero, err
	}
	vel, ok := g.velocityComponent()
	if !ok {
		return common.Zero, g.session.report(op, g, SeverityHalting, ErrNoVelocity)
	}
	return vel.Force, nil
}

// ChangeAnimation switches the Animation component to name.
func (g *GameObject) ChangeAnimation(name string) error {
	const op = "ChangeAnimation"
	if err := g.check(op); err != nil {
		return err
	}
	anim, ok := ecs.Get(g.session.world, g.entity, component.AnimationComponent.Kind())
	if !ok {
		return g.session.report(op, g, SeveritySoft, ErrNoAnimation)
	}
	if err := anim.Change(name); err != nil {
		return g.session.report(op, g, SeveritySoft, err)
	}
	return nil
}
