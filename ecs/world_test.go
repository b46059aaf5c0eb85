package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/poles/ecs/component"
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
				ents = append(ents, w.CreateEntity())
			}
			if len(w.Entities()) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(w.Entities()))
			}
			if c.destroyIndex >= 0 {
				if !w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("second DestroyEntity should return false")
				}
				if w.Len() != c.create-1 {
					t.Fatalf("expected %d live entities, got %d", c.create-1, w.Len())
				}
			}
		})
	}
}

func TestEntityReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	first := w.CreateEntity()
	if !w.DestroyEntity(first) {
		t.Fatal("destroy failed")
	}
	second := w.CreateEntity()

	if first.ID() != second.ID() {
		t.Fatalf("expected slot reuse, got ids %d and %d", first.ID(), second.ID())
	}
	if first == second {
		t.Fatalf("reused handle must differ from the stale one")
	}
	if w.IsAlive(first) {
		t.Fatalf("stale handle reported alive")
	}
	if !w.IsAlive(second) {
		t.Fatalf("new handle reported dead")
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

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
				if _, ok := Get(w, e2, h1.Kind()); ok {
					t.Fatalf("e2 should not have an int")
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
				if got := w.ComponentCount(e1); got != 1 {
					t.Fatalf("expected 1 component on e1, got %d", got)
				}
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) && Remove(w, e2, h2.Kind()) },
		},
		{
			name:  "replace_keeps_single_entry",
			setup: func() error { _ = Add(w, e1, h1.Kind(), intPtr(1)); return Add(w, e1, h1.Kind(), intPtr(2)) },
			check: func(t *testing.T) {
				v, _ := Get(w, e1, h1.Kind())
				if *v != 2 {
					t.Fatalf("expected replaced value 2, got %d", *v)
				}
				if n := len(w.Query(h1.Kind().ID())); n != 1 {
					t.Fatalf("expected one entity in query, got %d", n)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
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
}

func TestAddRejectsInvalidInput(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	e := w.CreateEntity()

	if err := Add[int](w, e, k, nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	if err := w.AddComponent(e, 0, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
	w.DestroyEntity(e)
	if err := Add(w, e, k, intPtr(1)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if w.ComponentCount(e) != 0 {
		t.Fatalf("dead entity should report no components")
	}
}

func TestQuery(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	kc := component.NewComponentKind[int]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()

	for _, step := range []struct {
		e Entity
		k component.ComponentKind[int]
	}{{e1, ka}, {e2, ka}, {e2, kb}, {e3, kb}} {
		if err := Add(w, step.e, step.k, intPtr(1)); err != nil {
			t.Fatal(err)
		}
	}

	if res := w.Query(ka.ID(), kb.ID()); len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}
	if res := w.Query(ka.ID(), kc.ID()); len(res) != 0 {
		t.Fatalf("expected empty result for missing store, got %v", res)
	}

	w.DestroyEntity(e2)
	if res := w.Query(ka.ID(), kb.ID()); len(res) != 0 {
		t.Fatalf("expected destroyed entity to leave query, got %v", res)
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()

	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	seen := map[Entity]int{}
	ForEach(w, h.Kind(), func(e Entity, v *int) { seen[e] = *v })

	if seen[e1] != 1 || seen[e3] != 3 {
		t.Fatalf("unexpected ForEach result %v", seen)
	}
	if _, ok := seen[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}
}

type countingSystem struct {
	requires []component.ComponentID
	updates  int
}

func (s *countingSystem) Update(*World) { s.updates++ }

func (s *countingSystem) Requires() []component.ComponentID { return s.requires }

func TestRefreshMaintainsMembership(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()

	early := w.CreateEntity()
	if err := Add(w, early, ka, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, early, kb, stringPtr("x")); err != nil {
		t.Fatal(err)
	}

	sys := &countingSystem{requires: []component.ComponentID{ka.ID(), kb.ID()}}
	w.AddSystem(sys)

	if got := w.Members(sys); len(got) != 1 || got[0] != early {
		t.Fatalf("existing entity should match on registration, got %v", got)
	}

	late := w.CreateEntity()
	if err := Add(w, late, ka, intPtr(2)); err != nil {
		t.Fatal(err)
	}
	if err := Add(w, late, kb, stringPtr("y")); err != nil {
		t.Fatal(err)
	}
	if got := w.Members(sys); len(got) != 1 {
		t.Fatalf("membership must not change before Refresh, got %v", got)
	}
	w.Refresh(late)
	if got := w.Members(sys); len(got) != 2 {
		t.Fatalf("expected two members after Refresh, got %v", got)
	}

	Remove(w, early, kb)
	w.Refresh(early)
	if got := w.Members(sys); len(got) != 1 || got[0] != late {
		t.Fatalf("expected only late after removal, got %v", got)
	}

	w.DestroyEntity(late)
	if got := w.Members(sys); len(got) != 0 {
		t.Fatalf("destroyed entity should leave membership, got %v", got)
	}

	w.Update()
	if sys.updates != 1 {
		t.Fatalf("expected one update, got %d", sys.updates)
	}
}

func TestSparseSetSwapRemove(t *testing.T) {
	w := NewWorld()
	a, b, c := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()

	s := &SparseSet{}
	s.Set(a, "a")
	s.Set(b, "b")
	s.Set(c, "c")

	if !s.Remove(a) {
		t.Fatal("remove failed")
	}
	if s.Has(a) {
		t.Fatal("a still present")
	}
	if s.Get(c) != "c" || s.Get(b) != "b" {
		t.Fatalf("swap-remove corrupted values: b=%v c=%v", s.Get(b), s.Get(c))
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}

	w.DestroyEntity(b)
	if s.Has(w.CreateEntity()) {
		t.Fatal("reused id with new generation must not match stale entry")
	}
}

func TestComponentKindNames(t *testing.T) {
	k := component.NewComponentKind[component.ComponentID]()
	if k.Name() != "component.ComponentID" {
		t.Fatalf("unexpected kind name %q", k.Name())
	}
	if !k.Valid() {
		t.Fatal("new kind should be valid")
	}
}
