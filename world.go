package lattice

import (
	"time"
	"unsafe"

	"go.uber.org/zap"
)

// World owns every pool, the component registry, the entity id allocator,
// and the registered systems. It is the single entry point the rest of the
// package's API hangs off of, the way warehouse's Storage is the entry point
// for Entities/Archetypes/Query. A World is not safe for concurrent use
// except where documented otherwise (its internal id allocator,
// RemoveEntity's staging); CreateEntity and AddEntity are not.
type World struct {
	components *componentRegistry
	idAlloc    *idAllocator

	pools     map[SignatureHash]*pool
	poolOrder []*pool // registration order, for deterministic RunSystems/RunEvents iteration

	entityToPool map[EntityId]*pool

	systems []System

	matchCache map[systemPoolKey]bool

	chunkSize int

	logger  *zap.Logger
	metrics metricsSink
}

// NewWorld constructs an empty World. Options configure logging, metrics,
// and the chunk byte budget; see WithLogger, WithMetrics, WithChunkSize.
func NewWorld(opts ...Option) *World {
	cfg := defaultWorldConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &World{
		components:   newComponentRegistry(),
		idAlloc:      newIDAllocator(),
		pools:        make(map[SignatureHash]*pool),
		entityToPool: make(map[EntityId]*pool),
		matchCache:   make(map[systemPoolKey]bool),
		chunkSize:    cfg.chunkSize,
		logger:       cfg.logger,
		metrics:      newMetricsSink(cfg.registry),
	}
}

// AddPool registers a new archetype from the given components, in the order
// given, and returns its Signature. Registering the same multiset in the
// same order twice returns the existing Signature rather than erroring.
// Returns ErrEmptyArchetype if components is empty, or ErrArchetypeTooLarge
// if the tuple's combined size leaves fewer than minElementCountPerChunk
// slots per chunk at this world's chunk size.
func (w *World) AddPool(components ...ComponentType) (Signature, error) {
	if len(components) == 0 {
		return Signature{}, ErrEmptyArchetype{}
	}
	sig := NewSignature(components...)
	if p, ok := w.pools[sig.Hash]; ok {
		return p.signature, nil
	}
	layout, err := newArchetypeLayout(sig, components, w.chunkSize)
	if err != nil {
		w.logger.Warn("archetype rejected",
			zap.String("signature", sig.String()),
			zap.Error(err),
		)
		return Signature{}, err
	}
	p := newPool(w, layout)
	w.pools[sig.Hash] = p
	w.poolOrder = append(w.poolOrder, p)
	w.logger.Debug("pool registered",
		zap.String("signature", sig.String()),
		zap.Int("elementCountPerChunk", layout.elementCount),
	)
	return sig, nil
}

// resolvePool returns the pool matching components, in order, registering
// one first if autoCreatePool is true and none exists yet. Returns
// ErrUnknownPool if autoCreatePool is false and no pool matches.
func (w *World) resolvePool(autoCreatePool bool, components []ComponentType) (*pool, error) {
	sig := NewSignature(components...)
	if p, ok := w.pools[sig.Hash]; ok {
		return p, nil
	}
	if !autoCreatePool {
		return nil, ErrUnknownPool{Signature: sig}
	}
	registered, err := w.AddPool(components...)
	if err != nil {
		return nil, err
	}
	return w.pools[registered.Hash], nil
}

// CreateEntity allocates a fresh, zero-valued entity in the pool matching
// components, in the order given. If autoCreatePool is true and no such pool
// exists yet, one is registered first (identical to calling AddPool then
// CreateEntity). If autoCreatePool is false and no pool matches, returns
// InvalidEntityID and ErrUnknownPool.
func (w *World) CreateEntity(autoCreatePool bool, components ...ComponentType) (EntityId, error) {
	p, err := w.resolvePool(autoCreatePool, components)
	if err != nil {
		return InvalidEntityID, err
	}
	id := p.createEntity(w.idAlloc)
	w.entityToPool[id] = p
	return id, nil
}

// AddEntity creates a fresh entity in the pool matching the declared types of
// values, registering that pool first if autoCreatePool is true and none
// exists, and writes each value into the new row.
func (w *World) AddEntity(autoCreatePool bool, values ...ComponentValue) (EntityId, error) {
	components := make([]ComponentType, len(values))
	for i, v := range values {
		components[i] = v.Type
	}
	p, err := w.resolvePool(autoCreatePool, components)
	if err != nil {
		return InvalidEntityID, err
	}
	id := p.addEntity(w.idAlloc, values)
	w.entityToPool[id] = p
	return id, nil
}

// AddEntityWithID places id, which the caller must guarantee is fresh within
// this World, into the pool matching the declared types of values. Behaviour
// is undefined if id is already in use (Design Notes, open question).
func (w *World) AddEntityWithID(id EntityId, autoCreatePool bool, values ...ComponentValue) (EntityId, error) {
	components := make([]ComponentType, len(values))
	for i, v := range values {
		components[i] = v.Type
	}
	p, err := w.resolvePool(autoCreatePool, components)
	if err != nil {
		return InvalidEntityID, err
	}
	p.addEntityWithID(id, values)
	w.entityToPool[id] = p
	return id, nil
}

// RemoveEntity stages id for removal, applied by the next Flush. Safe to
// call from any goroutine (it only touches the owning pool's
// mutex-guarded pending set). Returns false if id is unknown.
func (w *World) RemoveEntity(id EntityId) bool {
	p, ok := w.entityToPool[id]
	if !ok {
		return false
	}
	return p.removeEntity(id)
}

// GetComponent returns a pointer to c's field on entity id, and whether it
// was found. The entity must be live and its archetype must include c.
func (w *World) GetComponent(id EntityId, c ComponentType) (unsafe.Pointer, bool) {
	p, ok := w.entityToPool[id]
	if !ok {
		return nil, false
	}
	return p.getComponent(id, c.ID())
}

// SetComponent byte-copies sizeof(c) bytes from src into entity id's c
// field. Returns false if id is unknown or its archetype doesn't include c.
func (w *World) SetComponent(id EntityId, c ComponentType, src unsafe.Pointer) bool {
	p, ok := w.entityToPool[id]
	if !ok {
		return false
	}
	return p.setComponent(id, c.ID(), src)
}

// PushEvent enqueues ev against entity id, delivered by the next RunEvents.
// Returns false if id is unknown.
func (w *World) PushEvent(id EntityId, ev Event) bool {
	p, ok := w.entityToPool[id]
	if !ok {
		return false
	}
	p.pushEvent(id, ev)
	return true
}

// AddSystem registers sys, appended after any previously registered system.
// RunSystems invokes systems in registration order.
func (w *World) AddSystem(sys System) {
	w.systems = append(w.systems, sys)
}

// RemoveSystem unregisters sys (the first match by identity) and drops any
// cached match results for it.
func (w *World) RemoveSystem(sys System) {
	for i, s := range w.systems {
		if s == sys {
			w.systems = append(w.systems[:i], w.systems[i+1:]...)
			break
		}
	}
	for key := range w.matchCache {
		if key.system == sys {
			delete(w.matchCache, key)
		}
	}
}

// RunSystems invokes every registered system, in registration order, against
// every pool whose archetype is a superset of that system's
// RequiredComponents, chunk by chunk. Systems must not perform structural
// operations (CreateEntity, AddEntity, RemoveEntity, Flush) while RunSystems
// is executing.
func (w *World) RunSystems() {
	start := time.Now()
	w.runSystems()
	w.metrics.observeRunSystems(time.Since(start).Seconds())
}

// RunEvents drains every pool's queued events, in per-entity FIFO order and
// first-enqueue order across entities within a pool, pool by pool in
// registration order.
func (w *World) RunEvents() {
	scratch := make([]unsafe.Pointer, 0, 8)
	for _, p := range w.poolOrder {
		p.drainEvents(&scratch)
	}
}

// Flush applies every staged removal (RemoveEntity) across every pool, via
// swap-with-tail compaction, then merges partial chunks so only the last
// non-empty chunk in each pool may be partial.
func (w *World) Flush() {
	for _, p := range w.poolOrder {
		for _, id := range p.flush() {
			delete(w.entityToPool, id)
		}
	}
}
