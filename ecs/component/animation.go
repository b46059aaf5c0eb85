package component

import (
	"errors"
	"fmt"
	"image"
)

var ErrUnknownAnimation = errors.New("ecs: unknown animation")

type AnimationDef struct {
	Row        int
	ColStart   int // start column (frame 0)
	FrameCount int
	FrameW     int
	FrameH     int
	FPS        float64
	Loop       bool
}

// Animation plays rows of a sprite sheet held by the entity's SpriteRenderer.
type Animation struct {
	Defs    map[string]AnimationDef
	Current string
	Frame   int
	Playing bool

	elapsed float64
}

var AnimationComponent = NewComponent[Animation]()

// Change switches to the named animation and restarts it.
func (a *Animation) Change(name string) error {
	if _, ok := a.Defs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAnimation, name)
	}
	if a.Current == name && a.Playing {
		return nil
	}
	a.Current = name
	a.Frame = 0
	a.elapsed = 0
	a.Playing = true
	return nil
}

// Advance moves the animation forward by dt seconds and reports whether the
// frame changed.
func (a *Animation) Advance(dt float64) bool {
	def, ok := a.Defs[a.Current]
	if !ok || !a.Playing || def.FPS <= 0 || def.FrameCount <= 0 {
		return false
	}
	a.elapsed += dt
	step := 1 / def.FPS
	changed := false
	for a.elapsed >= step {
		a.elapsed -= step
		next := a.Frame + 1
		if next >= def.FrameCount {
			if !def.Loop {
				a.Playing = false
				return changed
			}
			next = 0
		}
		a.Frame = next
		changed = true
	}
	return changed
}

// SourceRect returns the sheet rectangle of the current frame.
func (a *Animation) SourceRect() (image.Rectangle, bool) {
	def, ok := a.Defs[a.Current]
	if !ok {
		return image.Rectangle{}, false
	}
	x := (def.ColStart + a.Frame) * def.FrameW
	y := def.Row * def.FrameH
	return image.Rect(x, y, x+def.FrameW, y+def.FrameH), true
}
