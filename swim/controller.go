package swim

import (
	"log"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs/component"
)

// DefaultVelocityResetDelay is how long CreateAntiGravity waits before
// zeroing the root part's velocity.
const DefaultVelocityResetDelay = time.Second / 20

// locomotionStates are suppressed while swimming.
var locomotionStates = [...]component.HumanoidStateType{
	component.HumanoidStateRunning,
	component.HumanoidStateRunningNoPhysics,
	component.HumanoidStateGettingUp,
	component.HumanoidStateJumping,
	component.HumanoidStateFreefall,
	component.HumanoidStateFallingDown,
}

// Controller toggles swimming for one character. It is not safe for
// concurrent use; call it from the goroutine that steps the host.
type Controller struct {
	enabled    bool
	session    *Session
	rig        *Rig
	conn       Connection
	resetDelay time.Duration
	logger     *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithVelocityResetDelay overrides DefaultVelocityResetDelay.
func WithVelocityResetDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.resetDelay = d
		}
	}
}

// WithLogger logs rig and state changes. Controllers are silent by default.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New binds a controller to session. It fails with ErrNotClient outside
// the client and with ErrNoHumanoid or ErrNoRootPart for a partial
// character.
func New(session Session, opts ...Option) (*Controller, error) {
	if err := session.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		session:    &session,
		resetDelay: DefaultVelocityResetDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IsEnabled reports whether swimming is active.
func (c *Controller) IsEnabled() bool {
	return c.enabled
}

// SetEnabled overwrites the flag without running Start or Stop. It is
// how a caller tells the controller the character already left the water.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Destroyed reports whether Destroy has been called.
func (c *Controller) Destroyed() bool {
	return c.session == nil
}

// Rig returns the active anti-gravity rig.
func (c *Controller) Rig() (Rig, bool) {
	if c.rig == nil {
		return Rig{}, false
	}
	return *c.rig, true
}

func (c *Controller) updateHumanoidStates(activate bool, state component.HumanoidStateType) {
	h := c.session.Humanoid
	for _, s := range locomotionStates {
		h.SetStateEnabled(s, activate)
	}
	h.ChangeState(state)
}

// updateGravity creates the rig when create is true and none exists, and
// tears it down when create is false. It returns the rig it created.
func (c *Controller) updateGravity(create bool) *Rig {
	if !create {
		if c.rig != nil {
			c.rig.Force.Destroy()
			c.rig.Attachment.Destroy()
			c.rig = nil
			c.logf("swim: %s anti-gravity cleared", c.session.Player)
		}
		return nil
	}
	if c.rig != nil {
		return nil
	}

	part := c.session.RootPart
	env := c.session.Env
	mass := part.AssemblyMass()

	att, err := env.Attach(part, part.Position())
	if err != nil {
		c.logf("swim: %s attach: %v", c.session.Player, err)
		return nil
	}
	force, err := env.ApplyForce(att, cp.Vector{X: 0, Y: env.Gravity() * mass}, true)
	if err != nil {
		att.Destroy()
		c.logf("swim: %s apply force: %v", c.session.Player, err)
		return nil
	}

	c.rig = &Rig{Attachment: att, Force: force}
	c.logf("swim: %s anti-gravity force=(%g, %g)", c.session.Player, force.Force().X, force.Force().Y)
	return c.rig
}

// Start suppresses locomotion, enters Swimming, cancels gravity and
// damps idle drift every frame. It does nothing if already enabled.
func (c *Controller) Start() {
	if c.session == nil || c.enabled {
		return
	}

	c.updateHumanoidStates(false, component.HumanoidStateSwimming)
	c.updateGravity(true)

	c.enabled = true

	humanoid := c.session.Humanoid
	part := c.session.RootPart
	if c.conn != nil {
		c.conn.Disconnect()
	}
	c.conn = c.session.Env.OnHeartbeat(func(float64) {
		if humanoid.MoveDirection().Length() > 0 {
			return
		}
		part.SetAssemblyLinearVelocity(cp.Vector{})
	})
}

// Stop restores locomotion, drops to Freefall and removes the rig. It
// does nothing if not enabled.
func (c *Controller) Stop() {
	if c.session == nil || !c.enabled {
		return
	}
	c.enabled = false

	c.updateHumanoidStates(true, component.HumanoidStateFreefall)
	c.updateGravity(false)

	if c.conn != nil {
		c.conn.Disconnect()
		c.conn = nil
	}
}

// ClearAntiGravity removes the rig and leaves the swim state alone.
func (c *Controller) ClearAntiGravity() {
	if c.session == nil {
		return
	}
	c.updateGravity(false)
}

// CreateAntiGravity adds the rig outside Start/Stop and zeroes the root
// part's velocity once after the reset delay.
func (c *Controller) CreateAntiGravity() {
	if c.session == nil {
		return
	}
	part := c.session.RootPart
	c.session.Env.Delay(c.resetDelay, func() {
		part.SetAssemblyLinearVelocity(cp.Vector{})
	})
	c.updateGravity(true)
}

// GetOut restores locomotion and jumps. The enabled flag and the rig are
// left alone; a later Stop still tears them down.
func (c *Controller) GetOut() {
	if c.session == nil {
		return
	}
	c.updateHumanoidStates(true, component.HumanoidStateJumping)
}

// ActiveHumanoidStates re-suppresses locomotion and re-enters Swimming
// without touching the rig.
func (c *Controller) ActiveHumanoidStates() {
	if c.session == nil {
		return
	}
	c.updateHumanoidStates(false, component.HumanoidStateSwimming)
}

// Destroy stops swimming and releases the session. Later calls to any
// method do nothing.
func (c *Controller) Destroy() {
	if c.session == nil {
		return
	}
	c.Stop()
	c.updateGravity(false)
	if c.conn != nil {
		c.conn.Disconnect()
		c.conn = nil
	}
	c.session = nil
}

// Close implements io.Closer.
func (c *Controller) Close() error {
	c.Destroy()
	return nil
}

func (c *Controller) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
