package component

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// TextRenderer draws a string at the projected position. Build it with
// NewTextRenderer; see Parallax for the zero value.
type TextRenderer struct {
	Parallax

	Text  string
	Face  text.Face
	Color color.Color
}

var TextRendererComponent = NewComponent[TextRenderer]()

// DefaultFace is the built-in bitmap face used when none is configured.
var DefaultFace text.Face = text.NewGoXFace(basicfont.Face7x13)

func NewTextRenderer(s string) *TextRenderer {
	return &TextRenderer{
		Parallax: DefaultParallax(),
		Text:     s,
		Face:     DefaultFace,
		Color:    colornames.White,
	}
}
