package engine

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

var (
	ErrNoCharacter    = errors.New("engine: player has no character")
	ErrPartGone       = errors.New("engine: root part no longer exists")
	ErrAttachmentGone = errors.New("engine: attachment no longer exists")
)

// Attachment is an owned anchor point on a root part.
type Attachment struct {
	rt     *Runtime
	entity ecs.Entity
	comp   *component.Attachment
}

func (a *Attachment) Entity() ecs.Entity {
	return a.entity
}

// WorldPosition returns the attachment point in world space.
func (a *Attachment) WorldPosition() cp.Vector {
	return a.comp.Body.LocalToWorld(a.comp.Position)
}

func (a *Attachment) Alive() bool {
	return a != nil && a.rt.world.IsAlive(a.entity)
}

// Destroy removes the attachment. Forces still referencing it are dropped
// by the physics system on its next step.
func (a *Attachment) Destroy() {
	if a == nil {
		return
	}
	a.rt.world.DestroyEntity(a.entity)
}

// VectorForce is an owned constant force acting through an attachment.
type VectorForce struct {
	rt     *Runtime
	entity ecs.Entity
	comp   *component.VectorForce
}

func (f *VectorForce) Entity() ecs.Entity {
	return f.entity
}

func (f *VectorForce) Force() cp.Vector {
	return f.comp.Force
}

func (f *VectorForce) ApplyAtCenterOfMass() bool {
	return f.comp.ApplyAtCenterOfMass
}

func (f *VectorForce) Alive() bool {
	return f != nil && f.rt.world.IsAlive(f.entity)
}

func (f *VectorForce) Destroy() {
	if f == nil {
		return
	}
	f.rt.world.DestroyEntity(f.entity)
}

// NewAttachment creates an attachment parented to part at a world position.
func (rt *Runtime) NewAttachment(part *RootPart, worldPosition cp.Vector) (*Attachment, error) {
	if part == nil || !rt.world.IsAlive(part.entity) {
		return nil, ErrPartGone
	}
	comp := &component.Attachment{Body: part.body, Position: part.body.WorldToLocal(worldPosition)}
	e := rt.world.CreateEntity()
	if err := ecs.Add(rt.world, e, component.AttachmentComponent.Kind(), comp); err != nil {
		return nil, fmt.Errorf("engine: add attachment: %w", err)
	}
	rt.debugf("Runtime: attachment %s on entity %s", e, part.entity)
	return &Attachment{rt: rt, entity: e, comp: comp}, nil
}

// NewVectorForce creates a world-relative force acting through att.
func (rt *Runtime) NewVectorForce(att *Attachment, force cp.Vector, applyAtCenterOfMass bool) (*VectorForce, error) {
	if !att.Alive() {
		return nil, ErrAttachmentGone
	}
	comp := &component.VectorForce{
		Force:               force,
		Attachment:          att.comp,
		RelativeTo:          component.RelativeToWorld,
		ApplyAtCenterOfMass: applyAtCenterOfMass,
	}
	e := rt.world.CreateEntity()
	if err := ecs.Add(rt.world, e, component.VectorForceComponent.Kind(), comp); err != nil {
		return nil, fmt.Errorf("engine: add vector force: %w", err)
	}
	rt.debugf("Runtime: vector force %s force=(%g, %g)", e, force.X, force.Y)
	return &VectorForce{rt: rt, entity: e, comp: comp}, nil
}
