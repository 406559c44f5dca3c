/*
Package lattice is an archetype-partitioned, chunked columnar Entity-
Component-System core for game-like simulations.

Entities are plain 64-bit ids. Components are user-defined plain-data struct
types. An archetype is a fixed, ordered tuple of component types; entities
sharing an archetype live together in a pool, which stores their component
data column-by-column (SoA) across a chain of fixed-size, cache-line-aligned
chunks. Systems declare a required-component set and are invoked chunk-wise
against every pool whose archetype is a superset of that set. Events are
one-shot, per-entity callables delivered after the system phase.

Core Concepts:

  - Entity: an opaque id with exactly one archetype for its lifetime.
  - Component: a plain-data type, identified by a stable ComponentId.
  - Pool: the chunked columnar storage for one archetype.
  - System: a callable invoked once per chunk of every matching pool.
  - Event: a callable bound to one entity, delivered after systems run.

Basic Usage:

	w := lattice.NewWorld()

	position := lattice.NewComponent[Position](w)
	velocity := lattice.NewComponent[Velocity](w)

	id, _ := w.AddEntity(true, position.Value(Position{X: 1, Y: 2}), velocity.Value(Velocity{}))

	w.AddSystem(moveSystem{Position: position.ID(), Velocity: velocity.ID()})
	w.RunSystems()
	w.RunEvents()
	w.Flush()

Removal is deferred: RemoveEntity only stages an entity for removal, and
Flush applies every staged removal for every pool, compacting chunks so live
rows stay a dense prefix. Structural changes (create, remove, flush) are not
safe to call from within a System's Execute; stage with RemoveEntity and
apply with Flush once the system phase has returned.
*/
package lattice
