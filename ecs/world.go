package ecs

import "github.com/milk9111/easyswim/ecs/component"

// World owns entities and their component stores.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity and drops every component attached to it.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(e.ID)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s := w.stores[id]
	if s == nil && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// AddComponent inserts or replaces a component value for an entity.
func (w *World) AddComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	w.store(id, true).Set(e.ID, value)
	return nil
}

// RemoveComponent drops a component from an entity.
func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	s := w.store(id, false)
	if !s.Has(e.ID) {
		return false
	}
	s.Remove(e.ID)
	return true
}

// HasComponent reports whether an entity carries a component.
func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.store(id, false).Has(e.ID)
}

// GetComponent returns the raw component value for an entity.
func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s := w.store(id, false)
	if !s.Has(e.ID) {
		return nil, false
	}
	return s.Get(e.ID), true
}

// Query returns live entities that carry every listed component kind.
func (w *World) Query(kinds ...component.KindID) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	// Walk the smallest store and probe the others.
	stores := make([]*SparseSet, len(kinds))
	smallest := 0
	for i, k := range kinds {
		stores[i] = w.store(k.ID(), false)
		if stores[i].Len() < stores[smallest].Len() {
			smallest = i
		}
	}
	ids := stores[smallest].Entities()
	out := make([]Entity, 0, len(ids))
next:
	for _, id := range ids {
		for i, s := range stores {
			if i != smallest && !s.Has(id) {
				continue next
			}
		}
		if e, ok := w.entities.handle(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first entity matching the query.
func (w *World) First(kinds ...component.KindID) (Entity, bool) {
	ents := w.Query(kinds...)
	if len(ents) == 0 {
		return Entity{}, false
	}
	return ents[0], true
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
