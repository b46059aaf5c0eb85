package obj

import (
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
)

// CameraAccessor exposes the active camera to screen-space projection.
type CameraAccessor interface {
	CameraPosition() common.Vector2D
	CameraCorrection() common.Vector2D
}

// FixedCamera is a CameraAccessor with constant values.
type FixedCamera struct {
	Position   common.Vector2D
	Correction common.Vector2D
}

func (c FixedCamera) CameraPosition() common.Vector2D {
	return c.Position
}

func (c FixedCamera) CameraCorrection() common.Vector2D {
	return c.Correction
}

// objectCamera reads a camera GameObject on every call, so moving the
// object moves the view without any sync step.
type objectCamera struct {
	session *Session
	handle  Handle
}

func (c objectCamera) CameraPosition() common.Vector2D {
	g, ok := c.session.Lookup(c.handle)
	if !ok {
		return common.Zero
	}
	pos, _ := g.Position()
	return pos
}

func (c objectCamera) CameraCorrection() common.Vector2D {
	g, ok := c.session.Lookup(c.handle)
	if !ok {
		return common.Zero
	}
	if cam, ok := ecs.Get(c.session.world, g.entity, component.CameraComponent.Kind()); ok {
		return cam.Correction
	}
	return common.Zero
}

// SetCamera makes g the active camera. g must carry a Camera component.
func (s *Session) SetCamera(g *GameObject) error {
	if err := s.owns("SetCamera", g); err != nil {
		return err
	}
	if !ecs.Has(s.world, g.entity, component.CameraComponent.Kind()) {
		return s.report("SetCamera", g, SeveritySoft, ErrNoCamera)
	}
	s.camera = objectCamera{session: s, handle: g.handle}
	return nil
}

// SetCameraAccessor installs any accessor as the active camera; nil clears it.
func (s *Session) SetCameraAccessor(c CameraAccessor) {
	s.camera = c
}

// Camera returns the active camera. Without one the view sits at the origin
// with no correction.
func (s *Session) Camera() CameraAccessor {
	if s.camera == nil {
		return FixedCamera{}
	}
	return s.camera
}

// CameraObject returns the active camera object when the camera is one.
func (s *Session) CameraObject() (*GameObject, bool) {
	oc, ok := s.camera.(objectCamera)
	if !ok {
		return nil, false
	}
	return s.Lookup(oc.handle)
}
