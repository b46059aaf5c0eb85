package component

import "github.com/milk9111/poles/common"

// Camera marks the entity whose world position is the view position.
// Correction is the viewport-origin offset subtracted before parallax, so a
// camera positioned on its target with Correction at half the viewport keeps
// the target centered.
type Camera struct {
	Correction common.Vector2D
	Target     string
	Smoothness float64
}

var CameraComponent = NewComponent[Camera]()
