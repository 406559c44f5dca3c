package lattice

import "github.com/latticeecs/lattice/internal/memutil"

// DefaultChunkSize is the "half of a typical 32 KiB L1" chunk byte budget
// (§6 Constants).
const DefaultChunkSize = 16384

// CacheLineSize is the alignment every chunk's base address is rounded up
// to (§6 Constants).
const CacheLineSize = 64

// minElementCountPerChunk is the admission floor: an archetype whose tuple
// is too large to fit at least this many rows per chunk (that is, 50 or
// fewer) is rejected at registration (§6 Constants; "implementation
// minimum: >50").
const minElementCountPerChunk = 51

// headerBytes is the notional per-chunk header budget (Count + Next)
// subtracted from ChunkSize before computing ElementCountPerChunk. Count
// and Next are ordinary Go struct fields on *chunk rather than bytes inside
// the columns buffer, but the capacity formula reserves this room anyway so
// ElementCountPerChunk tracks what a packed-header implementation would
// yield.
const headerBytes = 32

// componentLayout describes where one component's column lives inside a
// chunk's columns buffer: a ElementCountPerChunk-length array starting at
// offset, each element `size` bytes (component size rounded up to the
// type's own alignment; see Design Notes §9 on the erased-buffer +
// ColumnLayout{offset,stride,size} strategy).
type componentLayout struct {
	id     ComponentId
	offset uintptr
	size   uintptr
}

// archetypeLayout is shared by every chunk of one pool: it never changes
// after the pool is registered.
type archetypeLayout struct {
	signature    Signature
	columns      []componentLayout
	byID         map[ComponentId]int // index into columns
	elementCount int
	entitySize   uintptr
	bufferSize   uintptr
	chunkSize    int
}

// newArchetypeLayout computes ElementCountPerChunk and column offsets for
// the given component tuple at the given chunk size. Returns
// ErrArchetypeTooLarge if the tuple can't reach minElementCountPerChunk.
func newArchetypeLayout(sig Signature, components []ComponentType, chunkSize int) (*archetypeLayout, error) {
	sizes := make([]uintptr, len(components))
	var entitySize uintptr
	for i, c := range components {
		align := uintptr(1)
		if t := c.Type(); t != nil {
			if a := t.Align(); a > 0 {
				align = uintptr(a)
			}
		}
		sizes[i] = memutil.AlignUp(c.Size(), align)
		if sizes[i] == 0 {
			sizes[i] = 1
		}
		entitySize += sizes[i]
	}

	available := chunkSize - headerBytes
	elementCount := 0
	if entitySize > 0 && available > 0 {
		elementCount = available / int(entitySize)
	}
	if elementCount < minElementCountPerChunk {
		return nil, ErrArchetypeTooLarge{EntitySize: entitySize, ElementCountPerChunk: elementCount}
	}

	columns := make([]componentLayout, len(components))
	byID := make(map[ComponentId]int, len(components))
	var offset uintptr
	for i, c := range components {
		columns[i] = componentLayout{id: c.ID(), offset: offset, size: sizes[i]}
		byID[c.ID()] = i
		offset += sizes[i] * uintptr(elementCount)
	}

	return &archetypeLayout{
		signature:    sig,
		columns:      columns,
		byID:         byID,
		elementCount: elementCount,
		entitySize:   entitySize,
		bufferSize:   offset,
		chunkSize:    chunkSize,
	}, nil
}

func (l *archetypeLayout) layoutFor(id ComponentId) (componentLayout, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return componentLayout{}, false
	}
	return l.columns[idx], true
}
