package ecs

import "github.com/milk9111/poles/ecs/component"

// Query returns live entities that carry every listed kind, in storage order
// of the smallest set.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	var smallest *SparseSet
	for _, id := range ids {
		s, ok := w.stores[id]
		if !ok {
			return nil
		}
		if smallest == nil || s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.Len())
	for _, e := range smallest.Entities() {
		if w.hasAll(e, ids) {
			out = append(out, e)
		}
	}
	return out
}
