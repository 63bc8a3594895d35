package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body and Shape are filled in by the physics system.
type PhysicsBody struct {
	Body          *cp.Body
	Shape         *cp.Shape
	Width         float64
	Height        float64
	Mass          float64
	Friction      float64
	Elasticity    float64
	Static        bool
	FixedRotation bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
