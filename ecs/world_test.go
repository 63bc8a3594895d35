package ecs

import (
	"testing"

	"github.com/milk9111/easyswim/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("second DestroyEntity should return false")
				}
				if len(Entities(w)) != c.create-1 {
					t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
				}
			}
		})
	}
}

func TestWorldReusesIDsWithNewGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.ID != old.ID {
		t.Fatalf("expected id %d to be reused, got %d", old.ID, fresh.ID)
	}
	if fresh.Gen == old.Gen {
		t.Fatalf("expected a new generation, both are %d", fresh.Gen)
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle %v should not be alive", old)
	}
	if Has(w, fresh, h.Kind()) {
		t.Fatalf("components of the destroyed entity leaked into %v", fresh)
	}
	if err := Add(w, old, h.Kind(), intPtr(2)); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive for stale handle, got %v", err)
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestWorldComponentsAndQueries(t *testing.T) {
	t.Run("component_table", func(t *testing.T) {
		w := NewWorld()

		h1 := component.NewComponent[int]()
		h2 := component.NewComponent[string]()
		h3 := component.NewComponent[float64]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)

		tests := []struct {
			name     string
			setup    func() error
			check    func(t *testing.T)
			teardown func() bool
		}{
			{
				name:  "add_int_to_e1",
				setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
				check: func(t *testing.T) {
					v, ok := Get(w, e1, h1.Kind())
					if !ok || *v != 10 {
						t.Fatalf("expected 10, got %v ok=%v", v, ok)
					}
				},
				teardown: func() bool { return Remove(w, e1, h1.Kind()) },
			},
			{
				name: "add_str_to_e1_and_e2",
				setup: func() error {
					if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
						return err
					}
					return Add(w, e2, h2.Kind(), stringPtr("b"))
				},
				check: func(t *testing.T) {
					if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
						t.Fatalf("expected both entities to have string component")
					}
				},
				teardown: func() bool { return Remove(w, e1, h2.Kind()) },
			},
			{
				name:  "add_float_and_remove",
				setup: func() error { return Add(w, e1, h3.Kind(), float64Ptr(1.23)) },
				check: func(t *testing.T) {
					if _, ok := Get(w, e1, h3.Kind()); !ok {
						t.Fatalf("expected float present")
					}
				},
				teardown: func() bool { return Remove(w, e1, h3.Kind()) },
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.setup(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				tc.check(t)
				if !tc.teardown() {
					t.Fatalf("teardown failed for %s", tc.name)
				}
			})
		}
	})

	t.Run("add_errors", func(t *testing.T) {
		w := NewWorld()
		e := CreateEntity(w)
		h := component.NewComponent[int]()

		if err := Add[int](w, e, h.Kind(), nil); err != component.ErrNilComponent {
			t.Fatalf("expected ErrNilComponent, got %v", err)
		}
		if err := Add(w, e, component.ComponentKind[int]{}, intPtr(1)); err != component.ErrInvalidComponentKind {
			t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
		}
	})
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)

		if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)

		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})

	t.Run("destroy_during_iteration", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		for i := 0; i < 4; i++ {
			e := CreateEntity(w)
			if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
				t.Fatal(err)
			}
		}

		visited := 0
		ForEach(w, h.Kind(), func(e Entity, _ *int) {
			visited++
			DestroyEntity(w, e)
		})
		if visited != 4 {
			t.Fatalf("expected 4 visits, got %d", visited)
		}
		if n := len(w.Query(h.Kind())); n != 0 {
			t.Fatalf("expected empty store, got %d", n)
		}
	})

	t.Run("mutates_in_place", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()
		e := CreateEntity(w)
		if err := Add(w, e, h.Kind(), intPtr(1)); err != nil {
			t.Fatal(err)
		}
		ForEach(w, h.Kind(), func(_ Entity, v *int) { *v = 42 })
		if v, _ := Get(w, e, h.Kind()); *v != 42 {
			t.Fatalf("expected 42, got %d", *v)
		}
	})
}

func TestForEach3(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)
				e4 := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e1, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, ka, intPtr(2)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, kb, intPtr(3)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, kc, intPtr(5)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e3, kb, intPtr(4)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e4, kc, intPtr(6)); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 1 || res[0] != e2 {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kb, intPtr(2)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kc, intPtr(3)); err != nil {
					t.Fatal(err)
				}

				if !DestroyEntity(w, e) {
					t.Fatal("failed to destroy entity")
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty result after destroy, got %v", res)
				}
			},
		},
		{
			name: "missing_store_returns_empty",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty when other store missing, got %v", res)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestForEach2AndFirst(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()

	if _, ok := First(w, ka); ok {
		t.Fatalf("First on empty world should report nothing")
	}

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	if err := Add(w, e1, ka, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e2, ka, intPtr(2)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, e2, kb, stringPtr("two")); err != nil {
		t.Fatal(err)
	}

	var got []Entity
	ForEach2(w, ka, kb, func(e Entity, n *int, s *string) {
		if *n != 2 || *s != "two" {
			t.Fatalf("unexpected values %d %q", *n, *s)
		}
		got = append(got, e)
	})
	if len(got) != 1 || got[0] != e2 {
		t.Fatalf("expected only e2, got %v", got)
	}

	if e, ok := First(w, ka, kb); !ok || e != e2 {
		t.Fatalf("expected First to return e2, got %v ok=%v", e, ok)
	}
}

func TestSchedulerRunsInOrder(t *testing.T) {
	var order []string
	s := NewScheduler(
		SystemFunc(func(*World) { order = append(order, "a") }),
		nil,
		SystemFunc(func(*World) { order = append(order, "b") }),
	)
	s.Add(SystemFunc(func(*World) { order = append(order, "c") }))

	if n := len(s.Systems()); n != 3 {
		t.Fatalf("expected nil system to be skipped, got %d systems", n)
	}

	s.Update(NewWorld())
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestEventQueueDrain(t *testing.T) {
	w := NewWorld()
	q := w.Events()
	q.Push(Event{Type: EventWaterEntered, Data: 1})
	q.Push(Event{Type: EventWaterExited, Data: 2})

	if q.Len() != 2 {
		t.Fatalf("expected 2 queued events, got %d", q.Len())
	}
	events := q.Drain()
	if len(events) != 2 || events[0].Type != EventWaterEntered || events[1].Type != EventWaterExited {
		t.Fatalf("unexpected events %v", events)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("expected queue to be empty after drain")
	}
}

func TestWorldQueryMixedKinds(t *testing.T) {
	w := NewWorld()
	a := component.NewComponent[int]()
	b := component.NewComponent[string]()
	c := component.NewComponent[float64]()

	var all []Entity
	for i := 0; i < 5; i++ {
		e := CreateEntity(w)
		all = append(all, e)
		if err := Add(w, e, a.Kind(), intPtr(i)); err != nil {
			t.Fatal(err)
		}
		if i%2 == 0 {
			s := "even"
			if err := Add(w, e, b.Kind(), &s); err != nil {
				t.Fatal(err)
			}
		}
	}
	// c is the smallest store and not listed first.
	f := 1.5
	if err := Add(w, all[2], c.Kind(), &f); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, all[3], c.Kind(), &f); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		kinds []component.KindID
		want  []Entity
	}{
		{"one", []component.KindID{b.Kind()}, []Entity{all[0], all[2], all[4]}},
		{"two", []component.KindID{a.Kind(), b.Kind()}, []Entity{all[0], all[2], all[4]}},
		{"three_smallest_last", []component.KindID{a.Kind(), b.Kind(), c.Kind()}, []Entity{all[2]}},
		{"three_smallest_first", []component.KindID{c.Kind(), a.Kind(), b.Kind()}, []Entity{all[2]}},
		{"disjoint", []component.KindID{c.Kind(), b.Kind(), component.NewComponent[bool]().Kind()}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := w.Query(tc.kinds...)
			if len(got) != len(tc.want) {
				t.Fatalf("Query returned %v, want %v", got, tc.want)
			}
			set := make(map[Entity]bool, len(got))
			for _, e := range got {
				set[e] = true
			}
			for _, e := range tc.want {
				if !set[e] {
					t.Fatalf("Query missing %v in %v", e, got)
				}
			}
		})
	}
}
