package common

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// Vector2D is a 2D float pair. Operations return new values.
type Vector2D struct {
	X float64
	Y float64
}

// Zero is the zero vector.
var Zero = Vector2D{}

func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Lerp moves v toward o by t.
func (v Vector2D) Lerp(o Vector2D, t float64) Vector2D {
	return Vector2D{X: Lerp(v.X, o.X, t), Y: Lerp(v.Y, o.Y, t)}
}

func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// CP converts v to a Chipmunk vector.
func (v Vector2D) CP() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func FromCP(v cp.Vector) Vector2D {
	return Vector2D{X: v.X, Y: v.Y}
}
