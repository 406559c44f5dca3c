package lattice

// mask.go wires github.com/TheBitDrifter/mask the way the teacher's
// storage.go/query.go do: a fixed-size bitset keyed by each component's
// dense row index (distinct from its 64-bit ComponentId), used to answer
// "does this pool's archetype contain every required component" in O(1)
// instead of the O(|req|·|sig|) linear scan spec.md describes as the
// baseline.

import "github.com/TheBitDrifter/mask"

// maskFor builds a mask.Mask from a set of component ids, using each id's
// row index (assigned by the world's componentRegistry) as the bit
// position — the same type storage.go/query.go use for archetype and
// query masks in the teacher.
func (w *World) maskFor(ids []ComponentId) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(w.components.rowIndexFor(id))
	}
	return m
}
