package lattice

import (
	"unsafe"

	"github.com/latticeecs/lattice/internal/memutil"
)

// chunk is a fixed-size, cache-line-aligned SoA block for one archetype.
// Live slots are [0, count); slots [count, layout.elementCount) are
// uninitialised storage (I2). entities mirrors SlotToEntity for this
// chunk: entities[i] is the EntityId occupying slot i, valid for i < count.
type chunk struct {
	raw      []byte // unaligned allocation; base is the aligned window into it
	base     unsafe.Pointer
	entities []EntityId
	count    int
	next     *chunk
}

// newChunk allocates a cache-line-aligned columns buffer sized for layout
// and a parallel entity-id slice of length layout.elementCount.
func newChunk(layout *archetypeLayout) *chunk {
	raw := make([]byte, int(layout.bufferSize)+CacheLineSize)
	base := memutil.AlignPointer(unsafe.Pointer(&raw[0]), CacheLineSize)
	return &chunk{
		raw:      raw,
		base:     base,
		entities: make([]EntityId, layout.elementCount),
		count:    0,
	}
}

// full reports whether the chunk has no remaining uninitialised slots.
func (c *chunk) full(layout *archetypeLayout) bool {
	return c.count >= layout.elementCount
}

// column returns a pointer to the base of componentId's column and the
// number of live rows (length = c.count). The second result is false if
// componentId is not part of this archetype.
func (c *chunk) column(layout *archetypeLayout, componentId ComponentId) (unsafe.Pointer, int, bool) {
	col, ok := layout.layoutFor(componentId)
	if !ok {
		return nil, 0, false
	}
	return memutil.Add(c.base, col.offset), c.count, true
}

// getField returns a pointer to componentId's field at the given slot.
// Defined only for slot < layout.elementCount.
func (c *chunk) getField(layout *archetypeLayout, componentId ComponentId, slot int) (unsafe.Pointer, bool) {
	col, ok := layout.layoutFor(componentId)
	if !ok {
		return nil, false
	}
	return memutil.Add(c.base, col.offset+col.size*uintptr(slot)), true
}

// moveSlot copies every column's bytes from srcSlot to dstSlot, plus the
// entity-id slot, and is defined only for src/dst < layout.elementCount.
// Components are plain bytes (§4.1): this is a raw copy, never a
// destructor/constructor pair.
func (c *chunk) moveSlot(layout *archetypeLayout, dstSlot, srcSlot int) {
	if dstSlot == srcSlot {
		return
	}
	for _, col := range layout.columns {
		dst := memutil.Add(c.base, col.offset+col.size*uintptr(dstSlot))
		src := memutil.Add(c.base, col.offset+col.size*uintptr(srcSlot))
		memutil.CopyBytes(dst, src, col.size)
	}
	c.entities[dstSlot] = c.entities[srcSlot]
}

// writeComponent byte-copies size bytes from src into componentId's field
// at slot.
func (c *chunk) writeComponent(layout *archetypeLayout, componentId ComponentId, slot int, src unsafe.Pointer) bool {
	dst, ok := c.getField(layout, componentId, slot)
	if !ok {
		return false
	}
	col, _ := layout.layoutFor(componentId)
	memutil.CopyBytes(dst, src, col.size)
	return true
}
