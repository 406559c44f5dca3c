package lattice

import (
	"sort"
	"sync"
	"time"
	"unsafe"

	"github.com/TheBitDrifter/mask"
	"github.com/latticeecs/lattice/internal/memutil"
)

// slotRef is an entity's storage location within its pool.
type slotRef struct {
	chunk *chunk
	index int
}

// pool is the chunked columnar storage for one archetype: a chain of
// chunks rooted at root, a forward entity locator, a per-chunk reverse
// locator (chunk.entities), a pending-removal set guarded by mu, and a
// per-entity event queue.
type pool struct {
	world     *World
	signature Signature
	layout    *archetypeLayout
	archMask  mask.Mask

	root *chunk
	tail *chunk

	entityToSlot map[EntityId]slotRef

	mu            sync.Mutex
	pendingRemove map[EntityId]struct{}

	eventQueue    map[EntityId][]Event
	eventOrder    []EntityId // insertion order of distinct entities, for deterministic drain order
}

func newPool(w *World, layout *archetypeLayout) *pool {
	return &pool{
		world:         w,
		signature:     layout.signature,
		layout:        layout,
		archMask:      w.maskFor(layout.signature.IDs),
		entityToSlot:  make(map[EntityId]slotRef),
		pendingRemove: make(map[EntityId]struct{}),
		eventQueue:    make(map[EntityId][]Event),
	}
}

func (p *pool) sigLabel() string {
	return signatureLabel(p.signature.Hash)
}

// allocSlot returns a fresh, zeroed slot for a new entity, allocating a new
// chunk if the tail is full. Chunks fill left-to-right (I2).
func (p *pool) allocSlot() slotRef {
	if p.root == nil {
		p.root = newChunk(p.layout)
		p.tail = p.root
		p.world.metrics.incChunksAllocated(p.sigLabel())
	} else if p.tail.full(p.layout) {
		next := newChunk(p.layout)
		p.tail.next = next
		p.tail = next
		p.world.metrics.incChunksAllocated(p.sigLabel())
	}
	idx := p.tail.count
	p.tail.count++
	return slotRef{chunk: p.tail, index: idx}
}

// createEntity allocates a new EntityId from alloc and places it in a fresh
// slot. Runtime never returns InvalidEntityID here: the ElementCountPerChunk
// guard already ran at registration (AddPool).
func (p *pool) createEntity(alloc *idAllocator) EntityId {
	id := alloc.Next()
	slot := p.allocSlot()
	slot.chunk.entities[slot.index] = id
	p.entityToSlot[id] = slot
	p.world.metrics.incEntitiesCreated(p.sigLabel(), 1)
	return id
}

// addEntityWithID places id (caller-chosen; caller asserts freshness, see
// Design Notes open question) into a fresh slot and writes values.
func (p *pool) addEntityWithID(id EntityId, values []ComponentValue) EntityId {
	slot := p.allocSlot()
	slot.chunk.entities[slot.index] = id
	p.entityToSlot[id] = slot
	for _, v := range values {
		slot.chunk.writeComponent(p.layout, v.Type.ID(), slot.index, v.Ptr)
	}
	p.world.metrics.incEntitiesCreated(p.sigLabel(), 1)
	return id
}

func (p *pool) addEntity(alloc *idAllocator, values []ComponentValue) EntityId {
	id := alloc.Next()
	slot := p.allocSlot()
	slot.chunk.entities[slot.index] = id
	p.entityToSlot[id] = slot
	for _, v := range values {
		slot.chunk.writeComponent(p.layout, v.Type.ID(), slot.index, v.Ptr)
	}
	p.world.metrics.incEntitiesCreated(p.sigLabel(), 1)
	return id
}

func (p *pool) hasEntity(id EntityId) (slotRef, bool) {
	slot, ok := p.entityToSlot[id]
	return slot, ok
}

func (p *pool) getComponent(id EntityId, componentId ComponentId) (unsafe.Pointer, bool) {
	slot, ok := p.entityToSlot[id]
	if !ok {
		return nil, false
	}
	return slot.chunk.getField(p.layout, componentId, slot.index)
}

func (p *pool) setComponent(id EntityId, componentId ComponentId, src unsafe.Pointer) bool {
	slot, ok := p.entityToSlot[id]
	if !ok {
		return false
	}
	return slot.chunk.writeComponent(p.layout, componentId, slot.index, src)
}

// removeEntity stages id for removal. Callable from any goroutine: it only
// appends to pendingRemove under mu. Idempotent.
func (p *pool) removeEntity(id EntityId) bool {
	if _, ok := p.entityToSlot[id]; !ok {
		return false
	}
	p.mu.Lock()
	p.pendingRemove[id] = struct{}{}
	p.mu.Unlock()
	return true
}

// flush applies every staged removal via swap-with-tail compaction, then
// merges partial chunks so only the last non-empty chunk may be partial,
// freeing any chunk (other than root) that becomes empty. Returns the ids
// actually removed, so the owning World can drop them from its own
// entity-to-pool index.
func (p *pool) flush() []EntityId {
	p.mu.Lock()
	if len(p.pendingRemove) == 0 {
		p.mu.Unlock()
		return nil
	}
	ids := make([]EntityId, 0, len(p.pendingRemove))
	for id := range p.pendingRemove {
		ids = append(ids, id)
	}
	p.pendingRemove = make(map[EntityId]struct{})
	p.mu.Unlock()

	start := time.Now()
	actuallyRemoved := p.applyRemovals(ids)
	p.mergePartialChunks()
	if len(actuallyRemoved) > 0 {
		p.world.metrics.incEntitiesRemoved(p.sigLabel(), len(actuallyRemoved))
	}
	p.world.metrics.observeFlush(p.sigLabel(), time.Since(start).Seconds())
	return actuallyRemoved
}

// applyRemovals performs the per-chunk swap-with-tail compaction described
// in spec §4.2 and returns the ids actually removed (an id no longer present
// in entityToSlot is a no-op, making repeated removal idempotent).
func (p *pool) applyRemovals(ids []EntityId) []EntityId {
	byChunk := make(map[*chunk][]int)
	for _, id := range ids {
		slot, ok := p.entityToSlot[id]
		if !ok {
			continue
		}
		byChunk[slot.chunk] = append(byChunk[slot.chunk], slot.index)
	}

	var allRemoved []EntityId
	for c, idxs := range byChunk {
		sort.Ints(idxs)
		removeSet := make(map[int]bool, len(idxs))
		for _, idx := range idxs {
			removeSet[idx] = true
		}
		usedAsDonor := make(map[int]bool, len(idxs))

		type movePair struct{ recipient int }
		removedEntities := make([]EntityId, len(idxs))
		pairs := make([]movePair, 0, len(idxs))

		donorCursor := c.count - 1
		for i, idx := range idxs {
			removedEntities[i] = c.entities[idx]
			for donorCursor > idx && (removeSet[donorCursor] || usedAsDonor[donorCursor]) {
				donorCursor--
			}
			if donorCursor > idx {
				c.moveSlot(p.layout, idx, donorCursor)
				usedAsDonor[donorCursor] = true
				pairs = append(pairs, movePair{recipient: idx})
				donorCursor--
			}
			c.count--
		}

		for _, pr := range pairs {
			donorEntity := c.entities[pr.recipient]
			p.entityToSlot[donorEntity] = slotRef{chunk: c, index: pr.recipient}
		}
		for _, id := range removedEntities {
			delete(p.entityToSlot, id)
			delete(p.eventQueue, id)
		}
		allRemoved = append(allRemoved, removedEntities...)
	}
	return allRemoved
}

// mergePartialChunks restores I2 after removals: walks the chain pulling
// rows from the tail of each chunk's successor into any partial chunk,
// freeing successors that empty out. Root is never freed even if it ends
// up empty (§4.2, scenario 6).
func (p *pool) mergePartialChunks() {
	if p.root == nil {
		return
	}
	cur := p.root
	for cur.next != nil {
		next := cur.next
		if cur.count < p.layout.elementCount {
			for cur.count < p.layout.elementCount && next.count > 0 {
				srcIdx := next.count - 1
				dstIdx := cur.count
				p.copyRowAcrossChunks(next, srcIdx, cur, dstIdx)
				next.count--
				cur.count++
			}
		}
		if next.count == 0 {
			cur.next = next.next
			p.world.metrics.incChunksReleased(p.sigLabel())
			if p.tail == next {
				p.tail = cur
			}
			continue // cur may now border a new successor; re-examine it
		}
		cur = cur.next
	}
}

func (p *pool) copyRowAcrossChunks(src *chunk, srcIdx int, dst *chunk, dstIdx int) {
	for _, col := range p.layout.columns {
		srcPtr := memutil.Add(src.base, col.offset+col.size*uintptr(srcIdx))
		dstPtr := memutil.Add(dst.base, col.offset+col.size*uintptr(dstIdx))
		memutil.CopyBytes(dstPtr, srcPtr, col.size)
	}
	movedEntity := src.entities[srcIdx]
	dst.entities[dstIdx] = movedEntity
	p.entityToSlot[movedEntity] = slotRef{chunk: dst, index: dstIdx}
}

// pushEvent enqueues ev for id, transferring ownership to this pool's
// queue. FIFO within one entity's queue; order across entities follows
// first-enqueue order.
func (p *pool) pushEvent(id EntityId, ev Event) {
	if _, seen := p.eventQueue[id]; !seen {
		p.eventOrder = append(p.eventOrder, id)
	}
	p.eventQueue[id] = append(p.eventQueue[id], ev)
}

// drainEvents delivers and destroys every queued event across every
// entity, in FIFO order per entity and enqueue order across entities. The
// queue is empty again when drainEvents returns.
func (p *pool) drainEvents(scratch *[]unsafe.Pointer) {
	order := p.eventOrder
	p.eventOrder = nil
	queue := p.eventQueue
	p.eventQueue = make(map[EntityId][]Event)

	for _, id := range order {
		events := queue[id]
		slot, live := p.entityToSlot[id]
		for _, ev := range events {
			if !live {
				continue
			}
			required := ev.RequiredComponents()
			if cap(*scratch) < len(required) {
				*scratch = make([]unsafe.Pointer, len(required))
			}
			ptrs := (*scratch)[:len(required)]
			ok := true
			for i, cid := range required {
				ptr, found := slot.chunk.getField(p.layout, cid, slot.index)
				if !found {
					ok = false
					break
				}
				ptrs[i] = ptr
			}
			if !ok {
				continue
			}
			ev.Execute(ptrs)
		}
	}
}
