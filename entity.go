package lattice

import "sync/atomic"

// EntityId is an opaque, monotonically allocated entity identity. Zero is
// reserved as a potential invalid marker; the canonical invalid value is
// InvalidEntityID (all-ones).
type EntityId uint64

// InvalidEntityID is returned by operations that fail to resolve or
// allocate an entity (e.g. CreateEntity with autoCreatePool=false and no
// matching pool).
const InvalidEntityID EntityId = ^EntityId(0)

// idAllocator hands out monotonically increasing EntityIds starting at 1.
// It is the one structural piece of world state safe to touch from any
// goroutine: Next takes a short-lived lock (an atomic add) and does no
// other work.
type idAllocator struct {
	next atomic.Uint64
}

func newIDAllocator() *idAllocator {
	a := &idAllocator{}
	a.next.Store(1)
	return a
}

// Next allocates and returns the next EntityId. Safe for concurrent use.
func (a *idAllocator) Next() EntityId {
	return EntityId(a.next.Add(1) - 1)
}
