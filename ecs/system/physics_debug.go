package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/obj"
)

// PhysicsDebugSystem outlines every collider of a PhysicsSystem in screen
// space, using the session camera with parallax index 1.
type PhysicsDebugSystem struct {
	physics *PhysicsSystem
	session *obj.Session
}

func NewPhysicsDebugSystem(ps *PhysicsSystem, s *obj.Session) *PhysicsDebugSystem {
	return &PhysicsDebugSystem{physics: ps, session: s}
}

func (d *PhysicsDebugSystem) Update(*ecs.World) {}

func (d *PhysicsDebugSystem) Draw(_ *ecs.World, screen *ebiten.Image) {
	if d.physics == nil || screen == nil {
		return
	}
	cp.DrawSpace(d.physics.Space(), &debugDrawer{screen: screen, view: viewOffset(d.session.Camera())})
}

// viewOffset is the translation from world to screen coordinates.
func viewOffset(cam obj.CameraAccessor) cp.Vector {
	return cam.CameraPosition().Sub(cam.CameraCorrection()).CP()
}

type debugDrawer struct {
	screen *ebiten.Image
	view   cp.Vector
}

func (d *debugDrawer) project(v cp.Vector) cp.Vector {
	return v.Sub(d.view)
}

func (d *debugDrawer) line(a, b cp.Vector, c color.Color) {
	a, b = d.project(a), d.project(b)
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, c)
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toRGBA(outline)
	const steps = 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / steps)
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, toRGBA(fill))
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, toRGBA(outline))
	if radius > 0 {
		d.DrawCircle(a, 0, radius, outline, fill, data)
		d.DrawCircle(b, 0, radius, outline, fill, data)
	}
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := toRGBA(fill)
	l := size / 2
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, c)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, c)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

// ShapeColor tells static colliders apart from moving ones.
func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape != nil && shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *debugDrawer) Data() interface{} {
	return nil
}

func toRGBA(c cp.FColor) color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(common.Clamp01(float64(v)) * 255)
	}
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A)}
}
