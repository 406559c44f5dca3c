package lattice

import "unsafe"

// Event is queued against a single entity via World.PushEvent and delivered
// by RunEvents once that entity's turn in the drain order comes up. It is
// the single-row counterpart of System: RequiredComponents is checked
// against the owning pool's archetype exactly like a system's, but Execute
// receives pointers into one entity's row rather than a whole chunk.
//
// An event whose entity was removed (by a Flush since it was enqueued) or
// whose required components aren't all present on the entity's archetype is
// silently dropped; RunEvents never reports which events were dropped.
type Event interface {
	RequiredComponents() []ComponentId
	Execute(pointers []unsafe.Pointer)
}
