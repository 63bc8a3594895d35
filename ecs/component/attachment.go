package component

import "github.com/jakecoffman/cp"

// Attachment is a point fixed to a body, expressed in body-local space.
type Attachment struct {
	Body     *cp.Body
	Position cp.Vector
}

var AttachmentComponent = NewComponent[Attachment]()
