package system

import (
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"github.com/milk9111/poles/obj"
)

// CameraSystem moves the session's active camera object toward the first
// object tagged with Camera.Target and keeps Correction at half the
// viewport, so the target ends up centered.
type CameraSystem struct {
	session  *obj.Session
	viewport common.Vector2D
}

func NewCameraSystem(s *obj.Session, width, height float64) *CameraSystem {
	return &CameraSystem{session: s, viewport: common.Vec(width, height)}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	camObj, ok := cs.session.CameraObject()
	if !ok {
		return
	}
	cam, ok := obj.GetComponent(camObj, component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam.Correction = cs.viewport.Scale(0.5)

	if cam.Target == "" {
		return
	}
	targets := cs.session.FindWithTag(cam.Target)
	if len(targets) == 0 {
		return
	}
	goal, err := targets[0].Position()
	if err != nil {
		return
	}
	cur, err := camObj.Position()
	if err != nil {
		return
	}
	local, err := camObj.RelativePosition()
	if err != nil {
		return
	}

	// Smoothness is the fraction of the remaining distance kept each tick.
	next := cur.Lerp(goal, 1-common.Clamp01(cam.Smoothness))
	_ = camObj.SetPosition(local.Add(next.Sub(cur)))
}
