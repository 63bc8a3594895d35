package engine

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
	"github.com/milk9111/easyswim/ecs/system"
)

// Character is a spawned character entity owned by a player.
type Character struct {
	rt     *Runtime
	entity ecs.Entity
	player *Player
}

func (c *Character) Entity() ecs.Entity {
	return c.entity
}

func (c *Character) Player() *Player {
	return c.player
}

// Alive reports whether the character entity still exists.
func (c *Character) Alive() bool {
	return c != nil && c.rt.world.IsAlive(c.entity)
}

// Humanoid returns the character's movement-state holder.
func (c *Character) Humanoid() (*Humanoid, bool) {
	if c == nil || !ecs.Has(c.rt.world, c.entity, component.HumanoidComponent.Kind()) {
		return nil, false
	}
	return &Humanoid{rt: c.rt, entity: c.entity}, true
}

// RootPart returns the character's root physical part.
func (c *Character) RootPart() (*RootPart, bool) {
	if c == nil {
		return nil, false
	}
	bodyComp, ok := ecs.Get(c.rt.world, c.entity, component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		return nil, false
	}
	return &RootPart{rt: c.rt, entity: c.entity, body: bodyComp.Body}, true
}

// SetMove writes the character's movement input for the next tick.
func (c *Character) SetMove(x, y float64) {
	if c == nil {
		return
	}
	if input, ok := ecs.Get(c.rt.world, c.entity, component.InputComponent.Kind()); ok {
		input.MoveX = x
		input.MoveY = y
	}
}

// Humanoid is a handle over a character's Humanoid component. Calls on a
// handle whose entity is gone do nothing.
type Humanoid struct {
	rt     *Runtime
	entity ecs.Entity
}

func (h *Humanoid) comp() (*component.Humanoid, bool) {
	return ecs.Get(h.rt.world, h.entity, component.HumanoidComponent.Kind())
}

func (h *Humanoid) SetStateEnabled(state component.HumanoidStateType, enabled bool) {
	if hc, ok := h.comp(); ok {
		hc.SetStateEnabled(state, enabled)
	}
}

func (h *Humanoid) StateEnabled(state component.HumanoidStateType) bool {
	hc, ok := h.comp()
	return ok && hc.StateEnabled(state)
}

// ChangeState forces an immediate transition. Disabled states are refused.
func (h *Humanoid) ChangeState(state component.HumanoidStateType) {
	hc, ok := h.comp()
	if !ok {
		return
	}
	if system.ChangeHumanoidState(h.rt.world, h.entity, hc, state) {
		h.rt.debugf("Humanoid: entity %s state %s -> %s", h.entity, hc.Previous, hc.State)
	}
}

func (h *Humanoid) State() component.HumanoidStateType {
	if hc, ok := h.comp(); ok {
		return hc.State
	}
	return component.HumanoidStateNone
}

// MoveDirection is the unit-or-shorter direction the player is steering.
func (h *Humanoid) MoveDirection() cp.Vector {
	if hc, ok := h.comp(); ok {
		return hc.MoveDirection
	}
	return cp.Vector{}
}

// RootPart is a handle over a character's Chipmunk body.
type RootPart struct {
	rt     *Runtime
	entity ecs.Entity
	body   *cp.Body
}

func (p *RootPart) Entity() ecs.Entity {
	return p.entity
}

func (p *RootPart) Body() *cp.Body {
	return p.body
}

func (p *RootPart) Position() cp.Vector {
	return p.body.Position()
}

// AssemblyMass is the mass of the body. Characters are a single body, so
// there is no assembly to sum over.
func (p *RootPart) AssemblyMass() float64 {
	return p.body.Mass()
}

func (p *RootPart) AssemblyLinearVelocity() cp.Vector {
	return p.body.Velocity()
}

func (p *RootPart) SetAssemblyLinearVelocity(v cp.Vector) {
	p.body.SetVelocityVector(v)
}
