package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

const (
	defaultWalkSpeed = 160.0
	defaultSwimSpeed = 90.0
	defaultJumpPower = 240.0
)

// HumanoidSystem turns input into a move direction and drives the body for
// the humanoid's current state. Automatic transitions only go to enabled
// states, which is what lets a swim controller pin the Swimming state.
type HumanoidSystem struct {
	ground GroundSensor
}

func NewHumanoidSystem(ground GroundSensor) *HumanoidSystem {
	return &HumanoidSystem{ground: ground}
}

// ChangeHumanoidState transitions h and records a humanoid_state_changed
// event when the transition happens.
func ChangeHumanoidState(w *ecs.World, e ecs.Entity, h *component.Humanoid, s component.HumanoidStateType) bool {
	if h == nil {
		return false
	}
	from := h.State
	if !h.ChangeState(s) {
		return false
	}
	if w != nil {
		w.Events().Push(ecs.Event{
			Type: ecs.EventHumanoidStateChanged,
			Data: component.HumanoidStateChanged{EntityID: e.ID, From: from, To: s},
		})
	}
	return true
}

func (hs *HumanoidSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.HumanoidComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, h *component.Humanoid, bodyComp *component.PhysicsBody) {
		if bodyComp.Body == nil {
			return
		}

		var jumpPressed bool
		if input, ok := ecs.Get(w, e, component.InputComponent.Kind()); ok {
			h.MoveDirection = moveDirection(input.MoveX, input.MoveY)
			jumpPressed = input.JumpPressed
		}

		grounded := hs.ground != nil && hs.ground.Grounded(e)
		body := bodyComp.Body
		vel := body.Velocity()

		switch h.State {
		case component.HumanoidStateRunning, component.HumanoidStateRunningNoPhysics, component.HumanoidStateLanded:
			vel.X = h.MoveDirection.X * speedOr(h.WalkSpeed, defaultWalkSpeed)
			if jumpPressed && ChangeHumanoidState(w, e, h, component.HumanoidStateJumping) {
				break
			}
			if !grounded {
				ChangeHumanoidState(w, e, h, component.HumanoidStateFreefall)
			} else if h.State == component.HumanoidStateLanded {
				ChangeHumanoidState(w, e, h, component.HumanoidStateRunning)
			}
		case component.HumanoidStateJumping:
			vel.X = h.MoveDirection.X * speedOr(h.WalkSpeed, defaultWalkSpeed)
			if !h.JumpApplied {
				vel.Y = speedOr(h.JumpPower, defaultJumpPower)
				h.JumpApplied = true
				break
			}
			ChangeHumanoidState(w, e, h, component.HumanoidStateFreefall)
		case component.HumanoidStateFreefall, component.HumanoidStateNone:
			vel.X = h.MoveDirection.X * speedOr(h.WalkSpeed, defaultWalkSpeed)
			if grounded && vel.Y <= 0 {
				if !ChangeHumanoidState(w, e, h, component.HumanoidStateLanded) {
					ChangeHumanoidState(w, e, h, component.HumanoidStateRunning)
				}
			}
		case component.HumanoidStateSwimming:
			// idle drift is left to whoever owns the swim state
			if h.MoveDirection.Length() > 0 {
				vel = h.MoveDirection.Mult(speedOr(h.SwimSpeed, defaultSwimSpeed))
			}
		}

		body.SetVelocityVector(vel)
		body.SetAngularVelocity(0)
	})
}

func moveDirection(x, y float64) cp.Vector {
	dir := cp.Vector{X: x, Y: y}
	if l := dir.Length(); l > 1 {
		dir = dir.Mult(1 / l)
	}
	return dir
}

func speedOr(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return fallback
	}
	return v
}
