package lattice

import "testing"

func TestPoolAddAndRemoveCompactsSwapWithTail(t *testing.T) {
	w := NewWorld(WithChunkSize(1024))
	pos := NewComponent[Position](w)

	ids := make([]EntityId, 5)
	for i := range ids {
		id, err := w.AddEntity(true, pos.Value(Position{X: float64(i)}))
		if err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
		ids[i] = id
	}

	// remove the first and third entities; the tail-most survivors should
	// slide into their slots.
	w.RemoveEntity(ids[0])
	w.RemoveEntity(ids[2])
	w.Flush()

	for _, id := range []EntityId{ids[0], ids[2]} {
		if _, ok := pos.Get(w, id); ok {
			t.Fatalf("entity %d should have been removed", id)
		}
	}
	for _, id := range []EntityId{ids[1], ids[3], ids[4]} {
		if _, ok := pos.Get(w, id); !ok {
			t.Fatalf("entity %d should still be live after compaction", id)
		}
	}

	p := w.entityToPool[ids[1]]
	if p.root.count != 3 {
		t.Fatalf("root chunk has %d rows after compaction, want 3", p.root.count)
	}
	if got := p.entityToSlot[ids[4]].index; got != 0 {
		t.Fatalf("last entity should have moved into slot 0, got slot %d", got)
	}
	if got := p.entityToSlot[ids[3]].index; got != 2 {
		t.Fatalf("second-to-last entity should have moved into slot 2, got slot %d", got)
	}
}

func TestPoolRemoveIsIdempotent(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[Position](w)
	id, _ := w.AddEntity(true, pos.Value(Position{}))

	if !w.RemoveEntity(id) {
		t.Fatalf("first RemoveEntity should report success")
	}
	if !w.RemoveEntity(id) {
		t.Fatalf("staging an already-staged removal twice should still report true")
	}
	w.Flush()

	if w.RemoveEntity(id) {
		t.Fatalf("removing an already-flushed entity should report false")
	}
}

func TestPoolChunkSpillAcrossBoundary(t *testing.T) {
	// Force a small element count per chunk (62 Position rows, just above the
	// 51-row admission minimum) so spilling across chunks is reachable
	// without allocating a real 16 KiB buffer.
	w := NewWorld(WithChunkSize(1024))
	pos := NewComponent[Position](w)

	sig, err := w.AddPool(pos)
	if err != nil {
		t.Fatalf("AddPool: %v", err)
	}
	p := w.pools[sig.Hash]
	perChunk := p.layout.elementCount

	total := perChunk*2 + 3
	ids := make([]EntityId, total)
	for i := 0; i < total; i++ {
		id, err := w.AddEntity(true, pos.Value(Position{X: float64(i)}))
		if err != nil {
			t.Fatalf("AddEntity %d: %v", i, err)
		}
		ids[i] = id
	}

	count := 0
	for c := p.root; c != nil; c = c.next {
		count += c.count
		if c.next != nil && c.count != perChunk {
			t.Fatalf("non-tail chunk has %d rows, want full %d (I2 violated)", c.count, perChunk)
		}
	}
	if count != total {
		t.Fatalf("chunk chain holds %d rows, want %d", count, total)
	}

	for _, id := range ids {
		if _, ok := pos.Get(w, id); !ok {
			t.Fatalf("entity %d missing after spilling across chunks", id)
		}
	}
}

func TestPoolMergeReleasesEmptyNonRootChunk(t *testing.T) {
	w := NewWorld(WithChunkSize(1024))
	pos := NewComponent[Position](w)

	sig, err := w.AddPool(pos)
	if err != nil {
		t.Fatalf("AddPool: %v", err)
	}
	p := w.pools[sig.Hash]
	perChunk := p.layout.elementCount

	ids := make([]EntityId, perChunk+2)
	for i := range ids {
		id, _ := w.AddEntity(true, pos.Value(Position{}))
		ids[i] = id
	}

	// remove everything in the second (tail) chunk
	for _, id := range ids[perChunk:] {
		w.RemoveEntity(id)
	}
	w.Flush()

	if p.root.next != nil {
		t.Fatalf("emptied non-root chunk should have been released")
	}
	if p.tail != p.root {
		t.Fatalf("tail should now point at root after release")
	}
}

func TestPoolRootChunkNeverReleased(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[Position](w)
	id, _ := w.AddEntity(true, pos.Value(Position{}))

	w.RemoveEntity(id)
	w.Flush()

	sig := NewSignature(pos)
	p := w.pools[sig.Hash]
	if p.root == nil {
		t.Fatalf("root chunk must survive even when empty")
	}
}
