package engine

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
	"github.com/milk9111/easyswim/ecs/system"
)

// Runtime is the host a client-side behavior runs against: an ECS world,
// a Chipmunk space, a per-tick Heartbeat signal and a deferred scheduler.
// It is driven by calling Step once per fixed tick from a single goroutine.
type Runtime struct {
	cfg       *Config
	context   ExecutionContext
	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	players   *Players
	logger    *log.Logger
	tick      uint64

	// Heartbeat fires after every step with the step length in seconds.
	Heartbeat *Signal[float64]
	// Events re-publishes world events at the end of every step.
	Events *Signal[ecs.Event]
}

type Option func(*Runtime)

// WithLogger replaces the default logger, which writes to the standard
// logger's output.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithSystems inserts extra systems ahead of the built-in ones.
func WithSystems(systems ...ecs.System) Option {
	return func(rt *Runtime) {
		for _, s := range systems {
			rt.scheduler.Add(s)
		}
	}
}

// NewRuntime builds a runtime from cfg. A nil cfg uses the embedded defaults.
func NewRuntime(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: new runtime: %w", err)
	}
	execCtx, _ := ParseExecutionContext(cfg.Context)

	rt := &Runtime{
		cfg:       cfg,
		context:   execCtx,
		world:     ecs.NewWorld(),
		scheduler: ecs.NewScheduler(),
		players:   newPlayers(),
		logger:    log.New(log.Writer(), cfg.Log.Prefix, log.LstdFlags),
		Heartbeat: NewSignal[float64](),
		Events:    NewSignal[ecs.Event](),
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.physics = system.NewPhysicsSystem(cfg.Gravity, cfg.DT())
	rt.scheduler.Add(system.NewWaterSystem())
	rt.scheduler.Add(system.NewHumanoidSystem(rt.physics))
	rt.scheduler.Add(rt.physics)
	rt.scheduler.Add(system.NewDeferredSystem())

	if execCtx == ContextClient {
		rt.players.setLocal(rt.players.Add(cfg.LocalPlayer))
	}
	rt.debugf("Runtime: started context=%s tick_rate=%d gravity=%g", execCtx, cfg.TickRate, cfg.Gravity)
	return rt, nil
}

// World returns the entity world the systems run on.
func (rt *Runtime) World() *ecs.World {
	return rt.world
}

// Physics returns the physics system.
func (rt *Runtime) Physics() *system.PhysicsSystem {
	return rt.physics
}

// Space returns the Chipmunk space owned by the physics system.
func (rt *Runtime) Space() *cp.Space {
	return rt.physics.Space()
}

// Players returns the players service.
func (rt *Runtime) Players() *Players {
	return rt.players
}

// Config returns the active configuration.
func (rt *Runtime) Config() *Config {
	return rt.cfg
}

// Context reports whether the runtime acts as client or server.
func (rt *Runtime) Context() ExecutionContext {
	return rt.context
}

// IsClient reports whether the runtime runs in the client context.
func (rt *Runtime) IsClient() bool {
	return rt.context == ContextClient
}

// Gravity returns the magnitude of world gravity.
func (rt *Runtime) Gravity() float64 {
	return rt.physics.Gravity()
}

// Tick returns the number of completed steps.
func (rt *Runtime) Tick() uint64 {
	return rt.tick
}

func (rt *Runtime) Logger() *log.Logger {
	return rt.logger
}

// Step advances the world by one fixed tick: systems in order, then the
// Heartbeat signal, then world events.
func (rt *Runtime) Step() {
	rt.scheduler.Update(rt.world)
	rt.tick++
	rt.Heartbeat.Fire(rt.physics.DT())
	for _, evt := range rt.world.Events().Drain() {
		rt.Events.Fire(evt)
	}
}

// TicksFor converts a duration to whole ticks, rounding up, never below 1.
func (rt *Runtime) TicksFor(d time.Duration) int {
	ticks := int(math.Ceil(d.Seconds()*float64(rt.cfg.TickRate) - 1e-9))
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// Delay runs fn once after d has elapsed in ticks. A scheduled task cannot
// be cancelled.
func (rt *Runtime) Delay(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	e := rt.world.CreateEntity()
	task := &component.DeferredTask{Ticks: rt.TicksFor(d), Run: fn}
	if err := ecs.Add(rt.world, e, component.DeferredTaskComponent.Kind(), task); err != nil {
		panic("engine: schedule deferred task: " + err.Error())
	}
}

// ApplyConfig swaps in a reloaded config. Gravity and humanoid tuning take
// effect immediately; the tick rate and execution context are fixed at
// construction.
func (rt *Runtime) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine: apply config: %w", err)
	}
	next := *cfg
	next.TickRate = rt.cfg.TickRate
	next.Context = rt.cfg.Context
	rt.cfg = &next
	rt.physics.SetGravity(next.Gravity)
	ecs.ForEach(rt.world, component.HumanoidComponent.Kind(), func(_ ecs.Entity, h *component.Humanoid) {
		h.WalkSpeed = next.Humanoid.WalkSpeed
		h.SwimSpeed = next.Humanoid.SwimSpeed
		h.JumpPower = next.Humanoid.JumpPower
	})
	rt.logger.Printf("Runtime: config applied gravity=%g", next.Gravity)
	return nil
}

func (rt *Runtime) debugf(format string, args ...any) {
	if rt.cfg.Log.Debug {
		rt.logger.Printf(format, args...)
	}
}
