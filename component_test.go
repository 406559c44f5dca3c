package lattice

import "testing"

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type withSlice struct {
	Items []int
}

type withString struct {
	Name string
}

type nestedPointer struct {
	Pos *Position
}

func TestNewComponentAssignsStableID(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[Position](w)
	vel := NewComponent[Velocity](w)

	if pos.ID() == vel.ID() {
		t.Fatalf("two distinct component types got the same id %d", pos.ID())
	}

	again := NewComponent[Position](w)
	if again.ID() != pos.ID() {
		t.Fatalf("re-registering Position changed its id: %d != %d", again.ID(), pos.ID())
	}
}

func TestNewComponentRejectsNonTrivialCopyTypes(t *testing.T) {
	tests := []struct {
		name string
		fn   func(w *World)
	}{
		{"slice field", func(w *World) { NewComponent[withSlice](w) }},
		{"string field", func(w *World) { NewComponent[withString](w) }},
		{"nested pointer field", func(w *World) { NewComponent[nestedPointer](w) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatalf("expected a panic for non-trivially-copyable component")
				}
			}()
			tt.fn(NewWorld())
		})
	}
}

func TestComponentSetGet(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[Position](w)

	id, err := w.AddEntity(true, pos.Value(Position{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}

	got, ok := pos.Get(w, id)
	if !ok {
		t.Fatalf("Get: component not found")
	}
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("Get: got %+v, want {1 2}", *got)
	}

	if !pos.Set(w, id, Position{X: 5, Y: 6}) {
		t.Fatalf("Set returned false")
	}
	got, _ = pos.Get(w, id)
	if got.X != 5 || got.Y != 6 {
		t.Fatalf("Set: got %+v, want {5 6}", *got)
	}
}
