package system

import (
	"github.com/milk9111/easyswim/ecs"
	"github.com/milk9111/easyswim/ecs/component"
)

// DeferredSystem counts down DeferredTask entities and runs each task once
// its ticks reach zero. The entity is destroyed before the task runs, so a
// task may schedule another one.
type DeferredSystem struct{}

func NewDeferredSystem() *DeferredSystem {
	return &DeferredSystem{}
}

func (s *DeferredSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.DeferredTaskComponent.Kind(), func(e ecs.Entity, task *component.DeferredTask) {
		task.Ticks--
		if task.Ticks > 0 {
			return
		}

		run := task.Run
		ecs.DestroyEntity(w, e)
		if run != nil {
			run()
		}
	})
}
