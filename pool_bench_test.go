package lattice

import (
	"testing"
	"unsafe"
)

const (
	benchPosVelCount  = 10000
	benchPosOnlyCount = 10000
)

type moveXY struct {
	posID ComponentId
	velID ComponentId
}

func (s moveXY) RequiredComponents() []ComponentId { return []ComponentId{s.posID, s.velID} }

func (s moveXY) Execute(n int, pointers []unsafe.Pointer) {
	positions := unsafe.Slice((*Position)(pointers[0]), n)
	velocities := unsafe.Slice((*Velocity)(pointers[1]), n)
	for i := 0; i < n; i++ {
		positions[i].X += velocities[i].X
		positions[i].Y += velocities[i].Y
	}
}

// BenchmarkRunSystemsPosVel mirrors the teacher's BenchmarkIterWarehouseGet:
// one mixed population (entities with Position+Velocity and entities with
// Position only), one system that should only ever touch the matching pool.
func BenchmarkRunSystemsPosVel(b *testing.B) {
	b.StopTimer()

	w := NewWorld()
	pos := NewComponent[Position](w)
	vel := NewComponent[Velocity](w)

	for i := 0; i < benchPosVelCount; i++ {
		if _, err := w.AddEntity(true, pos.Value(Position{}), vel.Value(Velocity{X: 1, Y: 1})); err != nil {
			b.Fatalf("AddEntity: %v", err)
		}
	}
	for i := 0; i < benchPosOnlyCount; i++ {
		if _, err := w.AddEntity(true, pos.Value(Position{})); err != nil {
			b.Fatalf("AddEntity: %v", err)
		}
	}

	w.AddSystem(moveXY{posID: pos.ID(), velID: vel.ID()})

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		w.RunSystems()
	}
}

func BenchmarkFlushCompaction(b *testing.B) {
	b.StopTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		w := NewWorld()
		pos := NewComponent[Position](w)
		ids := make([]EntityId, 5000)
		for j := range ids {
			id, _ := w.AddEntity(true, pos.Value(Position{X: float64(j)}))
			ids[j] = id
		}
		for j, id := range ids {
			if j%2 == 0 {
				w.RemoveEntity(id)
			}
		}
		b.StartTimer()
		w.Flush()
	}
}
