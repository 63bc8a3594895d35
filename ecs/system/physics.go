package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

const (
	collisionTypeCharacter cp.CollisionType = iota + 1
	collisionTypeCharacterGround
	collisionTypeSolid
)

const groundGraceFrames = 3

// GroundSensor reports whether a character body is standing on something.
type GroundSensor interface {
	Grounded(e ecs.Entity) bool
}

type PhysicsSystem struct {
	space         *cp.Space
	dt            float64
	handlersReady bool

	entities     map[ecs.Entity]*bodyInfo
	bodyOwners   map[*cp.Body]ecs.Entity
	groundShapes map[*cp.Shape]ecs.Entity
	contacts     map[ecs.Entity]*contactState
}

type bodyInfo struct {
	body        *cp.Body
	mainShape   *cp.Shape
	groundShape *cp.Shape
	shapes      []*cp.Shape
	static      bool
}

type contactState struct {
	grounded    bool
	groundGrace int
}

// NewPhysicsSystem creates a Chipmunk space with world Y pointing up, so
// gravity pulls towards negative Y.
func NewPhysicsSystem(gravity, dt float64) *PhysicsSystem {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: -gravity})
	return &PhysicsSystem{
		space:        space,
		dt:           dt,
		entities:     make(map[ecs.Entity]*bodyInfo),
		bodyOwners:   make(map[*cp.Body]ecs.Entity),
		groundShapes: make(map[*cp.Shape]ecs.Entity),
		contacts:     make(map[ecs.Entity]*contactState),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Gravity returns the magnitude of the downward gravity.
func (ps *PhysicsSystem) Gravity() float64 {
	if ps == nil || ps.space == nil {
		return 0
	}
	return -ps.space.Gravity().Y
}

func (ps *PhysicsSystem) SetGravity(gravity float64) {
	if ps == nil || ps.space == nil {
		return
	}
	ps.space.SetGravity(cp.Vector{X: 0, Y: -gravity})
}

// DT returns the fixed step length in seconds.
func (ps *PhysicsSystem) DT() float64 {
	if ps == nil {
		return 0
	}
	return ps.dt
}

// AddFloor adds a static segment characters can stand on.
func (ps *PhysicsSystem) AddFloor(a, b cp.Vector, radius float64) *cp.Shape {
	if ps == nil || ps.space == nil {
		return nil
	}
	shape := cp.NewSegment(ps.space.StaticBody, a, b, radius)
	shape.SetFriction(0.8)
	shape.SetCollisionType(collisionTypeSolid)
	ps.space.AddShape(shape)
	return shape
}

// Grounded reports whether the entity's ground sensor touched a solid shape
// within the last few steps.
func (ps *PhysicsSystem) Grounded(e ecs.Entity) bool {
	if ps == nil {
		return false
	}
	st := ps.contacts[e]
	return st != nil && (st.grounded || st.groundGrace > 0)
}

// EnsureBody creates the Chipmunk body for an entity right away instead of
// waiting for the next Update.
func (ps *PhysicsSystem) EnsureBody(w *ecs.World, e ecs.Entity) (*component.PhysicsBody, bool) {
	if ps == nil || w == nil {
		return nil, false
	}
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return nil, false
	}
	if info := ps.entities[e]; info != nil {
		return bodyComp, true
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		transform = &component.Transform{}
	}
	info := ps.createBodyInfo(*transform, bodyComp, ecs.Has(w, e, component.HumanoidComponent.Kind()))
	if info == nil {
		return nil, false
	}
	ps.entities[e] = info
	ps.bodyOwners[info.body] = e
	if info.groundShape != nil {
		ps.groundShapes[info.groundShape] = e
	}
	bodyComp.Body = info.body
	bodyComp.Shape = info.mainShape
	return bodyComp, true
}

// Owner returns the entity that owns a dynamic body.
func (ps *PhysicsSystem) Owner(body *cp.Body) (ecs.Entity, bool) {
	if ps == nil || body == nil {
		return ecs.Entity{}, false
	}
	e, ok := ps.bodyOwners[body]
	return e, ok
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || ps.space == nil {
		return
	}

	ps.ensureHandlers()
	ps.cleanupEntities(w)
	ps.syncEntities(w)
	ps.applyForces(w)
	ps.resetContacts()

	ps.space.Step(ps.dt)

	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	groundHandler := ps.space.NewCollisionHandler(collisionTypeCharacterGround, collisionTypeSolid)
	groundHandler.UserData = ps
	groundHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		e, okA := sys.groundShapes[shapeA]
		if !okA {
			var okB bool
			e, okB = sys.groundShapes[shapeB]
			if !okB {
				return true
			}
		}
		st := sys.contacts[e]
		if st == nil {
			st = &contactState{}
			sys.contacts[e] = st
		}
		st.grounded = true
		st.groundGrace = groundGraceFrames
		return true
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind()) {
		if _, ok := ps.entities[e]; ok {
			continue
		}
		ps.EnsureBody(w, e)
	}
}

// cleanupEntities removes bodies of destroyed entities along with any rig
// objects still attached to them.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		for _, shape := range info.shapes {
			delete(ps.groundShapes, shape)
			ps.space.RemoveShape(shape)
		}
		if !info.static && info.body != nil {
			delete(ps.bodyOwners, info.body)
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		delete(ps.contacts, e)
	}

	ecs.ForEach(w, component.AttachmentComponent.Kind(), func(e ecs.Entity, att *component.Attachment) {
		if _, ok := ps.bodyOwners[att.Body]; ok {
			return
		}
		ecs.DestroyEntity(w, e)
	})
	ecs.ForEach(w, component.VectorForceComponent.Kind(), func(e ecs.Entity, f *component.VectorForce) {
		if f.Attachment != nil {
			if _, ok := ps.bodyOwners[f.Attachment.Body]; ok {
				return
			}
		}
		ecs.DestroyEntity(w, e)
	})
}

// applyForces pushes every live VectorForce onto its body. Chipmunk clears
// accumulated forces after each step, so this runs every tick.
func (ps *PhysicsSystem) applyForces(w *ecs.World) {
	ecs.ForEach(w, component.VectorForceComponent.Kind(), func(_ ecs.Entity, f *component.VectorForce) {
		if f.Attachment == nil || f.Attachment.Body == nil {
			return
		}
		body := f.Attachment.Body
		force := f.Force
		if f.RelativeTo == component.RelativeToAttachment {
			force = rotate(force, body.Angle())
		}
		local := f.Attachment.Position
		if f.ApplyAtCenterOfMass {
			local = body.CenterOfGravity()
		}
		body.ApplyForceAtWorldPoint(force, body.LocalToWorld(local))
	})
}

func (ps *PhysicsSystem) resetContacts() {
	for e, st := range ps.contacts {
		if _, ok := ps.entities[e]; !ok {
			delete(ps.contacts, e)
			continue
		}
		if st.groundGrace > 0 {
			st.groundGrace--
		}
		st.grounded = false
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static || info.body == nil {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = info.body.Angle()
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp *component.PhysicsBody, withGroundSensor bool) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		width = 32
		height = 32
	}
	center := cp.Vector{X: transform.X, Y: transform.Y}

	if bodyComp.Static {
		bb := cp.BB{L: center.X - width/2, B: center.Y - height/2, R: center.X + width/2, T: center.Y + height/2}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		return &bodyInfo{static: true, body: ps.space.StaticBody, mainShape: shape, shapes: []*cp.Shape{shape}}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	moment := cp.MomentForBox(mass, width, height)
	if bodyComp.FixedRotation {
		moment = math.Inf(1)
	}

	body := cp.NewBody(mass, moment)
	body.SetPosition(center)
	body.SetAngle(transform.Rotation)
	body.SetAngularVelocity(0)

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(collisionTypeCharacter)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	info := &bodyInfo{body: body, mainShape: shape, shapes: []*cp.Shape{shape}}
	if withGroundSensor {
		groundShape := createGroundSensor(body, width, height)
		ps.space.AddShape(groundShape)
		info.groundShape = groundShape
		info.shapes = append(info.shapes, groundShape)
	}
	return info
}

// createGroundSensor adds a thin sensor strip under the body. World Y is up,
// so the strip sits below -height/2.
func createGroundSensor(body *cp.Body, width, height float64) *cp.Shape {
	groundBB := cp.BB{
		L: -width * 0.45,
		B: -height/2.0 - 2,
		R: width * 0.45,
		T: -height / 2.0,
	}
	groundShape := cp.NewBox2(body, groundBB, 0)
	groundShape.SetSensor(true)
	groundShape.SetCollisionType(collisionTypeCharacterGround)
	return groundShape
}

func rotate(v cp.Vector, angle float64) cp.Vector {
	sin, cos := math.Sincos(angle)
	return cp.Vector{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}
