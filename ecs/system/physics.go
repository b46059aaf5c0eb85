package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"go.uber.org/zap"
)

const (
	defaultBodySize = 32
	syncEpsilon     = 1e-9
)

type PhysicsSystem struct {
	space  *cp.Space
	dt     float64
	bodies map[ecs.Entity]*bodyInfo
	logger *zap.Logger
}

type bodyInfo struct {
	comp   *component.PhysicsBody
	body   *cp.Body
	shape  *cp.Shape
	static bool
	// synced is the world position last shared between body and Position.
	synced common.Vector2D
}

func NewPhysicsSystem(gravity common.Vector2D, logger *zap.Logger) *PhysicsSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(gravity.CP())
	return &PhysicsSystem{
		space:  space,
		dt:     common.FixedStep,
		bodies: make(map[ecs.Entity]*bodyInfo),
		logger: logger,
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	return ps.space
}

func (ps *PhysicsSystem) Requires() []component.ComponentID {
	return []component.ComponentID{
		component.PositionComponent.Kind().ID(),
		component.PhysicsBodyComponent.Kind().ID(),
	}
}

// Update creates bodies for new members, moves bodies whose Position changed
// outside the space, pushes Velocity force into body velocity, steps the
// space and writes body positions back as local coordinates under each
// entity's parent.
func (ps *PhysicsSystem) Update(w *ecs.World) {
	members := w.Members(ps)
	ps.cleanup(members)

	for _, e := range members {
		pos, ok := ecs.Get(w, e, component.PositionComponent.Kind())
		if !ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}
		info := ps.bodies[e]
		if info == nil {
			info = ps.createBody(pos.World(), bodyComp)
			info.comp = bodyComp
			ps.bodies[e] = info
			bodyComp.Body = info.body
			bodyComp.Shape = info.shape
			ps.logger.Debug("physics body created",
				zap.Stringer("entity", e),
				zap.Bool("static", info.static),
			)
		} else if world := pos.World(); moved(world, info.synced) {
			ps.teleport(info, world)
		}
		if info.static {
			continue
		}
		if vel, ok := ecs.Get(w, e, component.VelocityComponent.Kind()); ok {
			info.body.SetVelocityVector(vel.Force.CP())
		}
	}

	ps.space.Step(ps.dt)

	for _, e := range members {
		info := ps.bodies[e]
		if info == nil || info.static {
			continue
		}
		pos, ok := ecs.Get(w, e, component.PositionComponent.Kind())
		if !ok {
			continue
		}
		world := common.FromCP(info.body.Position())
		pos.SetPosition(world.Sub(pos.ParentWorld()))
		info.synced = pos.World()
	}
}

func moved(a, b common.Vector2D) bool {
	return math.Abs(a.X-b.X) > syncEpsilon || math.Abs(a.Y-b.Y) > syncEpsilon
}

// teleport places a body at world. Static shapes hang off the shared static
// body, so they are rebuilt around the new center.
func (ps *PhysicsSystem) teleport(info *bodyInfo, world common.Vector2D) {
	info.synced = world
	if !info.static {
		info.body.SetPosition(world.CP())
		return
	}
	ps.space.RemoveShape(info.shape)
	info.shape = ps.staticBox(world, info.comp)
	info.comp.Shape = info.shape
}

func (ps *PhysicsSystem) createBody(center common.Vector2D, bodyComp *component.PhysicsBody) *bodyInfo {
	if bodyComp.Static {
		return &bodyInfo{body: ps.space.StaticBody, shape: ps.staticBox(center, bodyComp), static: true, synced: center}
	}

	width, height := bodySize(bodyComp)
	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	body.SetPosition(center.CP())
	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	return &bodyInfo{body: body, shape: shape, synced: center}
}

func (ps *PhysicsSystem) staticBox(center common.Vector2D, bodyComp *component.PhysicsBody) *cp.Shape {
	width, height := bodySize(bodyComp)
	bb := cp.BB{L: center.X - width/2, B: center.Y - height/2, R: center.X + width/2, T: center.Y + height/2}
	shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
	shape.SetFriction(bodyComp.Friction)
	return ps.space.AddShape(shape)
}

func bodySize(bodyComp *component.PhysicsBody) (float64, float64) {
	if bodyComp.Width <= 0 || bodyComp.Height <= 0 {
		return defaultBodySize, defaultBodySize
	}
	return bodyComp.Width, bodyComp.Height
}

// cleanup removes bodies of entities that are no longer members.
func (ps *PhysicsSystem) cleanup(members []ecs.Entity) {
	live := make(map[ecs.Entity]struct{}, len(members))
	for _, e := range members {
		live[e] = struct{}{}
	}
	for e, info := range ps.bodies {
		if _, ok := live[e]; ok {
			continue
		}
		ps.space.RemoveShape(info.shape)
		if !info.static {
			ps.space.RemoveBody(info.body)
		}
		info.comp.Body = nil
		info.comp.Shape = nil
		delete(ps.bodies, e)
		ps.logger.Debug("physics body removed", zap.Stringer("entity", e))
	}
}

// Len returns the number of bodies currently in the space.
func (ps *PhysicsSystem) Len() int {
	return len(ps.bodies)
}
