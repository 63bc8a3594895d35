// Package swim makes a character swim: it pins the humanoid in the
// Swimming state and cancels gravity on the root part with a vector force
// until swimming stops.
package swim

import (
	"errors"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs/component"
)

var (
	ErrNotClient   = errors.New("swim: controller must run on the client")
	ErrNoPlayer    = errors.New("swim: no local player")
	ErrNoHumanoid  = errors.New("swim: character has no humanoid")
	ErrNoRootPart  = errors.New("swim: character has no root part")
	ErrNoEnv       = errors.New("swim: session has no environment")
	ErrNotReady    = errors.New("swim: controller not ready")
	ErrCancelled   = errors.New("swim: open cancelled")
	ErrWrongObject = errors.New("swim: object does not belong to this environment")
)

// Humanoid is the movement-state holder of the bound character.
type Humanoid interface {
	SetStateEnabled(state component.HumanoidStateType, enabled bool)
	ChangeState(state component.HumanoidStateType)
	MoveDirection() cp.Vector
}

// RootPart is the body the anti-gravity force acts on.
type RootPart interface {
	Position() cp.Vector
	AssemblyMass() float64
	SetAssemblyLinearVelocity(v cp.Vector)
}

// Connection is a live heartbeat subscription.
type Connection interface {
	Disconnect()
}

// Attachment is an anchor point owned by the controller.
type Attachment interface {
	Destroy()
}

// VectorForce is a force generator owned by the controller.
type VectorForce interface {
	Force() cp.Vector
	Destroy()
}

// Env is the slice of the host engine the controller needs.
type Env interface {
	IsClient() bool
	// Gravity is the magnitude of world gravity; world Y points up.
	Gravity() float64
	// OnHeartbeat calls fn once per frame until the connection is dropped.
	OnHeartbeat(fn func(dt float64)) Connection
	// Delay runs fn once after d. It cannot be cancelled.
	Delay(d time.Duration, fn func())
	// Attach creates an attachment on part at a world position.
	Attach(part RootPart, worldPosition cp.Vector) (Attachment, error)
	// ApplyForce creates a world-relative force acting through att.
	ApplyForce(att Attachment, force cp.Vector, applyAtCenterOfMass bool) (VectorForce, error)
}

// Session is the character a controller is bound to.
type Session struct {
	Player   string
	Humanoid Humanoid
	RootPart RootPart
	Env      Env
}

func (s Session) validate() error {
	if s.Env == nil {
		return ErrNoEnv
	}
	if !s.Env.IsClient() {
		return ErrNotClient
	}
	if s.Humanoid == nil {
		return ErrNoHumanoid
	}
	if s.RootPart == nil {
		return ErrNoRootPart
	}
	return nil
}

// Rig is the anti-gravity pair: an attachment and the force acting
// through it. They are created and destroyed together.
type Rig struct {
	Attachment Attachment
	Force      VectorForce
}
