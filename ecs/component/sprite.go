package component

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteRenderer draws an image at the projected position. Build it with
// NewSpriteRenderer; see Parallax for the zero value.
type SpriteRenderer struct {
	Parallax

	Image      *ebiten.Image
	Source     image.Rectangle
	UseSource  bool
	OriginX    float64
	OriginY    float64
	FacingLeft bool
}

var SpriteRendererComponent = NewComponent[SpriteRenderer]()

func NewSpriteRenderer(img *ebiten.Image) *SpriteRenderer {
	return &SpriteRenderer{Parallax: DefaultParallax(), Image: img}
}

// Frame returns the image to draw, honoring Source when UseSource is set.
func (s *SpriteRenderer) Frame() *ebiten.Image {
	if s == nil || s.Image == nil {
		return nil
	}
	if !s.UseSource {
		return s.Image
	}
	if sub, ok := s.Image.SubImage(s.Source).(*ebiten.Image); ok {
		return sub
	}
	return s.Image
}
