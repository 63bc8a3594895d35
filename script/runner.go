// Package script drives a swim controller from a tengo scenario. A
// scenario defines on_tick(swim, tick) and is called once per host tick.
package script

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/easyswim/engine"
	"github.com/milk9111/easyswim/swim"
)

const tickDispatchScript = `
on_tick(__swim, __tick)
`

// Runner owns a compiled scenario and the controller it drives.
type Runner struct {
	name      string
	compiled  *tengo.Compiled
	ctrl      *swim.Controller
	character *engine.Character
	logger    *log.Logger
	tick      int
	done      bool
}

// LoadFile compiles a scenario from disk.
func LoadFile(path string, ctrl *swim.Controller, character *engine.Character, logger *log.Logger) (*Runner, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}
	return Load(path, src, ctrl, character, logger)
}

// Load compiles a scenario. character receives set_move input and may be
// nil for scenarios that never steer.
func Load(name string, src []byte, ctrl *swim.Controller, character *engine.Character, logger *log.Logger) (*Runner, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("script: %s: nil controller", name)
	}
	if logger == nil {
		logger = log.Default()
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + tickDispatchScript))
	_ = script.Add("__swim", map[string]any{})
	_ = script.Add("__tick", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}

	return &Runner{
		name:      name,
		compiled:  compiled,
		ctrl:      ctrl,
		character: character,
		logger:    logger,
	}, nil
}

// Done reports whether the scenario called done().
func (r *Runner) Done() bool {
	return r.done
}

// Tick returns the number of ticks run so far.
func (r *Runner) Tick() int {
	return r.tick
}

// Step runs on_tick once. It is a no-op after done(). Runtime faults in
// the VM, such as integer division by zero, come back as errors.
func (r *Runner) Step() (err error) {
	if r.done {
		return nil
	}
	r.tick++
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script: %s tick %d: %v", r.name, r.tick, p)
		}
	}()
	if err := r.compiled.Set("__swim", r.api()); err != nil {
		return err
	}
	if err := r.compiled.Set("__tick", r.tick); err != nil {
		return err
	}
	if err := r.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s tick %d: %w", r.name, r.tick, err)
	}
	return nil
}

func (r *Runner) api() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	action := func(name string, fn func()) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			fn()
			return tengo.UndefinedValue, nil
		}}
	}
	action("start", r.ctrl.Start)
	action("stop", r.ctrl.Stop)
	action("get_out", r.ctrl.GetOut)
	action("create_anti_gravity", r.ctrl.CreateAntiGravity)
	action("clear_anti_gravity", r.ctrl.ClearAntiGravity)
	action("active_humanoid_states", r.ctrl.ActiveHumanoidStates)
	action("done", func() { r.done = true })

	values["enabled"] = &tengo.UserFunction{Name: "enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if r.ctrl.IsEnabled() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["set_move"] = &tengo.UserFunction{Name: "set_move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return nil, tengo.ErrInvalidArgumentType{Name: "set_move", Expected: "float", Found: args[0].TypeName()}
		}
		r.character.SetMove(x, y)
		return tengo.UndefinedValue, nil
	}}

	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		var x, y float64
		if part, ok := r.character.RootPart(); ok {
			v := part.AssemblyLinearVelocity()
			x, y = v.X, v.Y
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name := "none"
		if h, ok := r.character.Humanoid(); ok {
			name = h.State().String()
		}
		return &tengo.String{Value: name}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		r.logger.Printf("script: %s tick %d: %s", r.name, r.tick, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
