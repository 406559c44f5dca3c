package lattice

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

// Only the id allocator and a pool's pending-removal enqueue are documented
// safe to touch from goroutines other than the one driving RunSystems/
// RunEvents/Flush (spec.md §7). These tests stress exactly those two paths.

func TestIDAllocatorConcurrentUnique(t *testing.T) {
	alloc := newIDAllocator()

	const goroutines = 32
	const perGoroutine = 1000

	results := make([][]EntityId, goroutines)
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		results[i] = make([]EntityId, perGoroutine)
		g.Go(func() error {
			for j := 0; j < perGoroutine; j++ {
				results[i][j] = alloc.Next()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}

	seen := make(map[EntityId]bool, goroutines*perGoroutine)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate EntityId %d allocated concurrently", id)
			}
			seen[id] = true
		}
	}
}

func TestPoolRemoveEntityConcurrentEnqueue(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[Position](w)

	const n = 500
	ids := make([]EntityId, n)
	for i := range ids {
		id, _ := w.AddEntity(true, pos.Value(Position{X: float64(i)}))
		ids[i] = id
	}

	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			w.RemoveEntity(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}

	w.Flush()
	for _, id := range ids {
		if _, ok := pos.Get(w, id); ok {
			t.Fatalf("entity %d survived a concurrently-staged removal", id)
		}
	}
}
