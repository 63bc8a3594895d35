package engine

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

// CharacterSpec describes a character to spawn. Zero fields fall back to a
// 20x40 box of mass 75.
type CharacterSpec struct {
	X, Y          float64
	Width, Height float64
	Mass          float64
}

func (s CharacterSpec) withDefaults() CharacterSpec {
	if s.Width <= 0 {
		s.Width = 20
	}
	if s.Height <= 0 {
		s.Height = 40
	}
	if s.Mass <= 0 {
		s.Mass = 75
	}
	return s
}

// SpawnCharacter builds a character entity for p, replacing any existing
// one, and fires p.CharacterAdded.
func (rt *Runtime) SpawnCharacter(p *Player, spec CharacterSpec) (*Character, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: spawn character: nil player")
	}
	if old := p.Character(); old != nil {
		rt.DespawnCharacter(p)
	}
	spec = spec.withDefaults()

	w := rt.world
	e := w.CreateEntity()
	adds := []error{
		ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}),
		ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{Name: p.Name}),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: spec.X, Y: spec.Y}),
		ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}),
		ecs.Add(w, e, component.HumanoidComponent.Kind(), &component.Humanoid{
			State:     component.HumanoidStateFreefall,
			WalkSpeed: rt.cfg.Humanoid.WalkSpeed,
			SwimSpeed: rt.cfg.Humanoid.SwimSpeed,
			JumpPower: rt.cfg.Humanoid.JumpPower,
		}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Width:         spec.Width,
			Height:        spec.Height,
			Mass:          spec.Mass,
			Friction:      0.8,
			FixedRotation: true,
		}),
	}
	for _, err := range adds {
		if err != nil {
			w.DestroyEntity(e)
			return nil, fmt.Errorf("engine: spawn character: %w", err)
		}
	}
	if _, ok := rt.physics.EnsureBody(w, e); !ok {
		w.DestroyEntity(e)
		return nil, fmt.Errorf("engine: spawn character: body not created")
	}

	c := &Character{rt: rt, entity: e, player: p}
	p.setCharacter(c)
	rt.logger.Printf("Runtime: spawned character %s for %s at (%g, %g)", e, p.Name, spec.X, spec.Y)
	p.CharacterAdded.Fire(c)
	return c, nil
}

// DespawnCharacter fires CharacterRemoving and destroys p's character.
func (rt *Runtime) DespawnCharacter(p *Player) {
	c := p.Character()
	if c == nil {
		return
	}
	p.CharacterRemoving.Fire(c)
	p.setCharacter(nil)
	rt.world.DestroyEntity(c.entity)
}

// BindCharacter makes e the character of p and fires CharacterAdded. It
// does not check which components e carries.
func (rt *Runtime) BindCharacter(p *Player, e ecs.Entity) *Character {
	c := &Character{rt: rt, entity: e, player: p}
	p.setCharacter(c)
	p.CharacterAdded.Fire(c)
	return c
}

// AddWaterVolume adds a region characters can swim in.
func (rt *Runtime) AddWaterVolume(bounds cp.BB) (ecs.Entity, error) {
	e := rt.world.CreateEntity()
	if err := ecs.Add(rt.world, e, component.WaterVolumeComponent.Kind(), &component.WaterVolume{Bounds: bounds}); err != nil {
		return ecs.Entity{}, fmt.Errorf("engine: add water volume: %w", err)
	}
	return e, nil
}

// AddFloor adds a static floor segment.
func (rt *Runtime) AddFloor(a, b cp.Vector) {
	rt.physics.AddFloor(a, b, 1)
}
