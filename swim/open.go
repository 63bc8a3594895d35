package swim

import (
	"context"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/engine"
)

// runtimeEnv adapts an engine.Runtime to Env.
type runtimeEnv struct {
	rt *engine.Runtime
}

func (e runtimeEnv) IsClient() bool {
	return e.rt.IsClient()
}

func (e runtimeEnv) Gravity() float64 {
	return e.rt.Gravity()
}

func (e runtimeEnv) OnHeartbeat(fn func(dt float64)) Connection {
	return e.rt.Heartbeat.Connect(fn)
}

func (e runtimeEnv) Delay(d time.Duration, fn func()) {
	e.rt.Delay(d, fn)
}

func (e runtimeEnv) Attach(part RootPart, worldPosition cp.Vector) (Attachment, error) {
	p, ok := part.(*engine.RootPart)
	if !ok {
		return nil, ErrWrongObject
	}
	a, err := e.rt.NewAttachment(p, worldPosition)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (e runtimeEnv) ApplyForce(att Attachment, force cp.Vector, applyAtCenterOfMass bool) (VectorForce, error) {
	a, ok := att.(*engine.Attachment)
	if !ok {
		return nil, ErrWrongObject
	}
	f, err := e.rt.NewVectorForce(a, force, applyAtCenterOfMass)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NewEnv exposes a runtime as a controller environment.
func NewEnv(rt *engine.Runtime) Env {
	return runtimeEnv{rt: rt}
}

// SessionFor builds a session for a spawned character.
func SessionFor(rt *engine.Runtime, ch *engine.Character) (Session, error) {
	if !rt.IsClient() {
		return Session{}, ErrNotClient
	}
	if ch == nil {
		return Session{}, engine.ErrNoCharacter
	}
	humanoid, ok := ch.Humanoid()
	if !ok {
		return Session{}, ErrNoHumanoid
	}
	part, ok := ch.RootPart()
	if !ok {
		return Session{}, ErrNoRootPart
	}
	var name string
	if p := ch.Player(); p != nil {
		name = p.Name
	}
	return Session{Player: name, Humanoid: humanoid, RootPart: part, Env: NewEnv(rt)}, nil
}

// Pending is a controller that will be bound once the local player's
// character exists.
type Pending struct {
	once sync.Once
	done chan struct{}
	ctrl *Controller
	err  error

	mu   sync.Mutex
	conn *engine.Connection
}

func (p *Pending) resolve(ctrl *Controller, err error) {
	p.once.Do(func() {
		p.ctrl, p.err = ctrl, err
		close(p.done)
		p.disconnect()
	})
}

func (p *Pending) disconnect() {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	conn.Disconnect()
}

// Done is closed once Result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the bound controller, or ErrNotReady before Done closes.
func (p *Pending) Result() (*Controller, error) {
	select {
	case <-p.done:
		return p.ctrl, p.err
	default:
		return nil, ErrNotReady
	}
}

// Cancel abandons the wait. A Pending that already resolved is unchanged.
func (p *Pending) Cancel() {
	p.resolve(nil, ErrCancelled)
}

// OpenAsync binds a controller to the local player's character without
// blocking. If no character is spawned yet the Pending resolves from the
// player's CharacterAdded signal, on the goroutine that steps rt.
func OpenAsync(rt *engine.Runtime, opts ...Option) *Pending {
	p := &Pending{done: make(chan struct{})}
	if !rt.IsClient() {
		p.resolve(nil, ErrNotClient)
		return p
	}
	player := rt.Players().LocalPlayer()
	if player == nil {
		p.resolve(nil, ErrNoPlayer)
		return p
	}

	bind := func(ch *engine.Character) {
		session, err := SessionFor(rt, ch)
		if err != nil {
			p.resolve(nil, err)
			return
		}
		all := make([]Option, 0, len(opts)+1)
		all = append(all, WithVelocityResetDelay(rt.Config().Swim.VelocityResetDelay))
		p.resolve(New(session, append(all, opts...)...))
	}

	// connect before checking so a spawn in between is not missed
	conn := player.CharacterAdded.Connect(bind)
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	select {
	case <-p.done:
		conn.Disconnect()
		return p
	default:
	}
	if ch := player.Character(); ch != nil {
		bind(ch)
	}
	return p
}

// Open is OpenAsync followed by a wait. It blocks until the character
// spawns, so never call it from the goroutine that steps rt unless the
// character already exists.
func Open(ctx context.Context, rt *engine.Runtime, opts ...Option) (*Controller, error) {
	p := OpenAsync(rt, opts...)
	select {
	case <-p.Done():
		return p.Result()
	case <-ctx.Done():
		p.Cancel()
		if ctrl, err := p.Result(); err == nil {
			return ctrl, nil
		}
		return nil, ctx.Err()
	}
}

var (
	_ Humanoid    = (*engine.Humanoid)(nil)
	_ RootPart    = (*engine.RootPart)(nil)
	_ Connection  = (*engine.Connection)(nil)
	_ Attachment  = (*engine.Attachment)(nil)
	_ VectorForce = (*engine.VectorForce)(nil)
)
