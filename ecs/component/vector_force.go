package component

import "github.com/jakecoffman/cp"

// ActuatorRelativeTo selects the frame a VectorForce is expressed in.
type ActuatorRelativeTo int

const (
	RelativeToWorld ActuatorRelativeTo = iota
	RelativeToAttachment
)

// VectorForce applies a constant force to the body of its attachment on
// every physics step until the entity is destroyed.
type VectorForce struct {
	Force               cp.Vector
	Attachment          *Attachment
	RelativeTo          ActuatorRelativeTo
	ApplyAtCenterOfMass bool
}

var VectorForceComponent = NewComponent[VectorForce]()
