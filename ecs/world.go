package ecs

import (
	"sort"

	"github.com/milk9111/poles/ecs/component"
)

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// Matcher is implemented by systems that process a fixed component
// composition. The world keeps their membership current on Refresh.
type Matcher interface {
	System
	Requires() []component.ComponentID
}

type membership struct {
	system   Matcher
	requires []component.ComponentID
	members  *SparseSet
}

// World owns entities, component storage, and system order.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	systems  []System
	matched  []*membership
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity drops every component of e, removes it from all systems and
// retires its handle.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(e)
	}
	for _, m := range w.matched {
		m.members.Remove(e)
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

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.alive
}

// Entities returns all live entities in id order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.alive)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

func (w *World) store(id component.ComponentID) *SparseSet {
	s, ok := w.stores[id]
	if !ok {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// AddComponent attaches or replaces the component of kind id. Systems do not
// see the new composition until Refresh is called.
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
	w.store(id).Set(e, value)
	return nil
}

// RemoveComponent detaches the component of kind id.
func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	s, ok := w.stores[id]
	if !ok {
		return false
	}
	return s.Remove(e)
}

func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s, ok := w.stores[id]
	if !ok {
		return nil, false
	}
	v := s.Get(e)
	return v, v != nil
}

func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[id].Has(e)
}

// Components returns the kinds attached to e, sorted by id.
func (w *World) Components(e Entity) []component.ComponentID {
	if w == nil || !w.entities.isAlive(e) {
		return nil
	}
	var out []component.ComponentID
	for id, s := range w.stores {
		if s.Has(e) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ComponentCount returns how many components are attached to e.
func (w *World) ComponentCount(e Entity) int {
	return len(w.Components(e))
}

// Refresh re-evaluates which systems match e. It must be called after any
// change to the composition of e.
func (w *World) Refresh(e Entity) {
	if w == nil {
		return
	}
	alive := w.entities.isAlive(e)
	for _, m := range w.matched {
		if alive && w.hasAll(e, m.requires) {
			m.members.Set(e, struct{}{})
		} else {
			m.members.Remove(e)
		}
	}
}

func (w *World) hasAll(e Entity, ids []component.ComponentID) bool {
	for _, id := range ids {
		if !w.stores[id].Has(e) {
			return false
		}
	}
	return true
}

// AddSystem appends a system to the update order. Matchers are evaluated
// against every live entity immediately.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
	m, ok := s.(Matcher)
	if !ok {
		return
	}
	entry := &membership{system: m, requires: m.Requires(), members: &SparseSet{}}
	w.matched = append(w.matched, entry)
	w.entities.each(func(e Entity) {
		if w.hasAll(e, entry.requires) {
			entry.members.Set(e, struct{}{})
		}
	})
}

// Members returns a snapshot of the entities currently matched by s.
func (w *World) Members(s Matcher) []Entity {
	if w == nil {
		return nil
	}
	for _, m := range w.matched {
		if m.system == s {
			out := make([]Entity, len(m.members.Entities()))
			copy(out, m.members.Entities())
			return out
		}
	}
	return nil
}

// Update runs all systems once in registration order.
func (w *World) Update() {
	if w == nil {
		return
	}
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
}
