package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores collider configuration and the Chipmunk2D runtime
// objects the physics system creates for it.
type PhysicsBody struct {
	Width    float64
	Height   float64
	Mass     float64
	Friction float64
	Static   bool

	Body  *cp.Body
	Shape *cp.Shape
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
