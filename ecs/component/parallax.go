package component

import "github.com/milk9111/poles/common"

// Parallax scales how far a layer shifts with the camera. Index 1 moves with
// the world, values below 1 lag behind (distant layers), 0 pins the layer to
// the screen. Compensation is added after scaling so a layer can be realigned.
//
// NewSpriteRenderer and NewTextRenderer start at index 1. A zero-value
// SpriteRenderer{} or TextRenderer{} literal has index 0 and stays pinned to
// the screen.
type Parallax struct {
	Index        float64
	Compensation common.Vector2D
}

// ParallaxSource is implemented by render components that take part in
// screen-space projection.
type ParallaxSource interface {
	ParallaxIndex() float64
	ParallaxCompensation() common.Vector2D
}

// DefaultParallax moves with the world and applies no compensation.
func DefaultParallax() Parallax {
	return Parallax{Index: 1}
}

func (p Parallax) ParallaxIndex() float64 {
	return p.Index
}

func (p Parallax) ParallaxCompensation() common.Vector2D {
	return p.Compensation
}
