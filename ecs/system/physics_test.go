package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

const testDT = 1.0 / 60.0

func addBody(t *testing.T, w *ecs.World, ps *PhysicsSystem, x, y, mass float64, humanoid bool) (ecs.Entity, *component.PhysicsBody) {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		t.Fatal(err)
	}
	if humanoid {
		if err := ecs.Add(w, e, component.HumanoidComponent.Kind(), &component.Humanoid{State: component.HumanoidStateFreefall}); err != nil {
			t.Fatal(err)
		}
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: 20, Height: 40, Mass: mass, FixedRotation: true}); err != nil {
		t.Fatal(err)
	}
	body, ok := ps.EnsureBody(w, e)
	if !ok || body.Body == nil {
		t.Fatalf("EnsureBody did not create a body")
	}
	return e, body
}

func addRig(t *testing.T, w *ecs.World, body *cp.Body, force cp.Vector) (ecs.Entity, ecs.Entity) {
	t.Helper()
	attE := ecs.CreateEntity(w)
	att := &component.Attachment{Body: body}
	if err := ecs.Add(w, attE, component.AttachmentComponent.Kind(), att); err != nil {
		t.Fatal(err)
	}
	forceE := ecs.CreateEntity(w)
	vf := &component.VectorForce{Force: force, Attachment: att, ApplyAtCenterOfMass: true}
	if err := ecs.Add(w, forceE, component.VectorForceComponent.Kind(), vf); err != nil {
		t.Fatal(err)
	}
	return attE, forceE
}

func TestPhysicsGravity(t *testing.T) {
	ps := NewPhysicsSystem(196.2, testDT)
	if got := ps.Gravity(); got != 196.2 {
		t.Fatalf("Gravity() = %v, want 196.2", got)
	}
	if g := ps.Space().Gravity(); g.Y != -196.2 || g.X != 0 {
		t.Fatalf("space gravity = %v, want (0, -196.2)", g)
	}
	ps.SetGravity(50)
	if got := ps.Gravity(); got != 50 {
		t.Fatalf("Gravity() after SetGravity = %v, want 50", got)
	}
	if ps.DT() != testDT {
		t.Fatalf("DT() = %v, want %v", ps.DT(), testDT)
	}
}

func TestPhysicsVectorForce(t *testing.T) {
	const gravity = 100.0
	const mass = 10.0

	tests := []struct {
		name   string
		force  cp.Vector
		checkV func(t *testing.T, v cp.Vector)
	}{
		{
			name:  "no_force_falls",
			force: cp.Vector{},
			checkV: func(t *testing.T, v cp.Vector) {
				if v.Y > -gravity*0.9 {
					t.Fatalf("expected the body to fall, vy = %v", v.Y)
				}
			},
		},
		{
			name:  "anti_gravity_cancels",
			force: cp.Vector{X: 0, Y: gravity * mass},
			checkV: func(t *testing.T, v cp.Vector) {
				if math.Abs(v.Y) > 1e-6 || math.Abs(v.X) > 1e-6 {
					t.Fatalf("expected zero velocity, got %v", v)
				}
			},
		},
		{
			name:  "double_force_rises",
			force: cp.Vector{X: 0, Y: 2 * gravity * mass},
			checkV: func(t *testing.T, v cp.Vector) {
				if v.Y < gravity*0.9 {
					t.Fatalf("expected the body to rise, vy = %v", v.Y)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ps := NewPhysicsSystem(gravity, testDT)
			_, body := addBody(t, w, ps, 0, 500, mass, false)
			addRig(t, w, body.Body, tc.force)

			for i := 0; i < 60; i++ {
				ps.Update(w)
			}
			tc.checkV(t, body.Body.Velocity())
		})
	}
}

func TestPhysicsTransformFollowsBody(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(100, testDT)
	e, _ := addBody(t, w, ps, 10, 500, 1, false)

	for i := 0; i < 30; i++ {
		ps.Update(w)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.Y >= 500 || tr.X != 10 {
		t.Fatalf("transform did not follow the falling body: %+v", tr)
	}
}

func TestPhysicsGroundedOnFloor(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(196.2, testDT)
	ps.AddFloor(cp.Vector{X: -500, Y: 0}, cp.Vector{X: 500, Y: 0}, 1)
	e, _ := addBody(t, w, ps, 0, 60, 75, true)

	if ps.Grounded(e) {
		t.Fatalf("should not be grounded before stepping")
	}
	for i := 0; i < 180; i++ {
		ps.Update(w)
	}
	if !ps.Grounded(e) {
		t.Fatalf("expected the character to be grounded on the floor")
	}
	if owner, ok := ps.Owner(mustBody(t, w, e)); !ok || owner != e {
		t.Fatalf("Owner() = %v %v, want %v", owner, ok, e)
	}
}

func TestPhysicsCleanupRemovesOrphanedRig(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(100, testDT)
	e, body := addBody(t, w, ps, 0, 100, 5, false)
	attE, forceE := addRig(t, w, body.Body, cp.Vector{Y: 500})

	ps.Update(w)
	if !ecs.IsAlive(w, attE) || !ecs.IsAlive(w, forceE) {
		t.Fatalf("rig should survive while its body exists")
	}

	ecs.DestroyEntity(w, e)
	ps.Update(w)

	if ecs.IsAlive(w, attE) || ecs.IsAlive(w, forceE) {
		t.Fatalf("rig should be destroyed with its body")
	}
	if _, ok := ps.Owner(body.Body); ok {
		t.Fatalf("destroyed body is still owned")
	}
}

func mustBody(t *testing.T, w *ecs.World, e ecs.Entity) *cp.Body {
	t.Helper()
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || body.Body == nil {
		t.Fatalf("entity %v has no body", e)
	}
	return body.Body
}
