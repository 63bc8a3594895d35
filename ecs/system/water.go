package system

import (
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

// WaterSystem tags humanoid bodies that overlap a water volume and emits
// water_entered / water_exited events when the overlap changes.
type WaterSystem struct{}

func NewWaterSystem() *WaterSystem {
	return &WaterSystem{}
}

func (s *WaterSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	volumes := w.Query(component.WaterVolumeComponent.Kind())

	ecs.ForEach2(w, component.HumanoidComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, _ *component.Humanoid, body *component.PhysicsBody) {
		if body.Body == nil {
			return
		}
		pos := body.Body.Position()

		inside := 0
		for _, v := range volumes {
			vol, ok := ecs.Get(w, v, component.WaterVolumeComponent.Kind())
			if ok && vol.Contains(pos) {
				inside = v.ID
				break
			}
		}

		_, wasInside := ecs.Get(w, e, component.InWaterComponent.Kind())
		switch {
		case inside != 0 && !wasInside:
			if err := ecs.Add(w, e, component.InWaterComponent.Kind(), &component.InWater{VolumeID: inside}); err != nil {
				panic("water system: add in-water tag: " + err.Error())
			}
			w.Events().Push(ecs.Event{Type: ecs.EventWaterEntered, Data: e})
		case inside == 0 && wasInside:
			ecs.Remove(w, e, component.InWaterComponent.Kind())
			w.Events().Push(ecs.Event{Type: ecs.EventWaterExited, Data: e})
		}
	})
}
