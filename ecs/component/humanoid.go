package component

import "github.com/jakecoffman/cp"

// HumanoidStateType enumerates the locomotion states a humanoid can be in.
type HumanoidStateType int

const (
	HumanoidStateNone HumanoidStateType = iota
	HumanoidStateRunning
	HumanoidStateRunningNoPhysics
	HumanoidStateGettingUp
	HumanoidStateJumping
	HumanoidStateFreefall
	HumanoidStateFallingDown
	HumanoidStateLanded
	HumanoidStateClimbing
	HumanoidStateSwimming
	HumanoidStateSeated
	HumanoidStatePhysics
	HumanoidStateDead
)

var humanoidStateNames = [...]string{
	HumanoidStateNone:             "none",
	HumanoidStateRunning:          "running",
	HumanoidStateRunningNoPhysics: "running_no_physics",
	HumanoidStateGettingUp:        "getting_up",
	HumanoidStateJumping:          "jumping",
	HumanoidStateFreefall:         "freefall",
	HumanoidStateFallingDown:      "falling_down",
	HumanoidStateLanded:           "landed",
	HumanoidStateClimbing:         "climbing",
	HumanoidStateSwimming:         "swimming",
	HumanoidStateSeated:           "seated",
	HumanoidStatePhysics:          "physics",
	HumanoidStateDead:             "dead",
}

func (s HumanoidStateType) String() string {
	if s < 0 || int(s) >= len(humanoidStateNames) {
		return "unknown"
	}
	return humanoidStateNames[s]
}

// Humanoid is the movement-state holder of a character. Every state starts
// enabled; a transition into a disabled state is refused.
type Humanoid struct {
	State         HumanoidStateType
	Previous      HumanoidStateType
	Disabled      map[HumanoidStateType]bool
	MoveDirection cp.Vector

	WalkSpeed float64
	SwimSpeed float64
	JumpPower float64

	// JumpApplied is reset on entering Jumping and set once the jump
	// impulse has been given.
	JumpApplied bool
}

// StateEnabled reports whether transitions into s are allowed.
func (h *Humanoid) StateEnabled(s HumanoidStateType) bool {
	if h == nil {
		return false
	}
	return !h.Disabled[s]
}

func (h *Humanoid) SetStateEnabled(s HumanoidStateType, enabled bool) {
	if h == nil {
		return
	}
	if enabled {
		delete(h.Disabled, s)
		return
	}
	if h.Disabled == nil {
		h.Disabled = make(map[HumanoidStateType]bool)
	}
	h.Disabled[s] = true
}

// ChangeState moves the humanoid into s and reports whether it did.
func (h *Humanoid) ChangeState(s HumanoidStateType) bool {
	if h == nil || !h.StateEnabled(s) {
		return false
	}
	h.Previous = h.State
	h.State = s
	if s == HumanoidStateJumping {
		h.JumpApplied = false
	}
	return true
}

// HumanoidStateChanged is the payload of a humanoid_state_changed event.
type HumanoidStateChanged struct {
	EntityID int
	From     HumanoidStateType
	To       HumanoidStateType
}

var HumanoidComponent = NewComponent[Humanoid]()
