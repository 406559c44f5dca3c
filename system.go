package lattice

import "unsafe"

// System is invoked once per chunk of every pool whose archetype is a
// superset of RequiredComponents. Pointers delivered to Execute are aligned
// column bases in declaration order, each addressing n contiguous values.
// A System must not outlive the call, must not allocate/free within the
// archetype, and must not call structural world operations (CreateEntity,
// AddEntity, RemoveEntity, Flush) while being invoked — stage structural
// changes with RemoveEntity and apply them with Flush once RunSystems
// returns.
type System interface {
	RequiredComponents() []ComponentId
	Execute(n int, pointers []unsafe.Pointer)
}

// systemPoolKey caches whether one system matches one pool, so repeated
// RunSystems calls re-check only on the first encounter of a (system,pool)
// pair, per spec §4.3 ("may be cached as a per-(system, pool) boolean on
// first query").
type systemPoolKey struct {
	system System
	pool   *pool
}

// matches reports whether p's signature is a superset of required,
// answered in O(1) via mask.Mask.ContainsAll instead of the
// O(|req|·|sig|) baseline scan spec.md describes — see mask.go.
func (w *World) matches(sys System, p *pool) bool {
	key := systemPoolKey{system: sys, pool: p}
	if cached, ok := w.matchCache[key]; ok {
		return cached
	}
	required := sys.RequiredComponents()
	reqMask := w.maskFor(required)
	result := p.archMask.ContainsAll(reqMask)
	w.matchCache[key] = result
	return result
}

// runSystems invokes every registered system, in registration order,
// against every matching pool's chunk chain, in chain order, presenting
// each chunk's live rows as a contiguous array (physical slot order).
func (w *World) runSystems() {
	scratch := make([]unsafe.Pointer, 0, 8)
	for _, sys := range w.systems {
		required := sys.RequiredComponents()
		if cap(scratch) < len(required) {
			scratch = make([]unsafe.Pointer, len(required))
		}
		ptrs := scratch[:len(required)]
		for _, p := range w.poolOrder {
			if !w.matches(sys, p) {
				continue
			}
			for c := p.root; c != nil; c = c.next {
				if c.count == 0 {
					continue
				}
				ok := true
				for i, cid := range required {
					ptr, _, found := c.column(p.layout, cid)
					if !found {
						ok = false
						break
					}
					ptrs[i] = ptr
				}
				if !ok {
					continue
				}
				sys.Execute(c.count, ptrs)
			}
		}
	}
}
