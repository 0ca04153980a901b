package scene

import (
	"errors"
	"slices"
	"testing"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
)

func TestNewSortsIDs(t *testing.T) {
	a := shape.MustPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	b := shape.MustPlane(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1))
	s, err := New(b, nil, a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !slices.Equal(s.IDs(), []shape.ID{a.ID(), b.ID()}) {
		t.Errorf("IDs() = %v, want [%v %v]", s.IDs(), a.ID(), b.ID())
	}
	if got, ok := s.Plane(b.ID()); !ok || got != b {
		t.Errorf("Plane(%v) = %v, %v", b.ID(), got, ok)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	a := shape.MustPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	if _, err := New(a, a); !errors.Is(err, ErrDuplicateSurface) {
		t.Errorf("err = %v, want ErrDuplicateSurface", err)
	}
}

func TestShapeFallsBackToEmpty(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Shape(shape.NoID).(shape.Empty); !ok {
		t.Errorf("Shape(NoID) = %T, want shape.Empty", s.Shape(shape.NoID))
	}
	if _, ok := s.Shape(shape.ID(1 << 60)).(shape.Empty); !ok {
		t.Error("unknown id did not resolve to Empty")
	}
}

func TestShadowing(t *testing.T) {
	wall := shape.MustPlane(math3d.V3(0, 5, 0), math3d.V3(0, 1, 0))
	ground := shape.MustPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	s, err := New(ground, wall)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start, end := math3d.V3(0, 0, 5), math3d.V3(0, 10, 5)
	id, ok := s.Shadowing(start, end.Sub(start))
	if !ok || id != wall.ID() {
		t.Errorf("Shadowing = %v, %v; want %v, true", id, ok, wall.ID())
	}
	if s.Shadowed(start, math3d.V3(0, 4, 0)) {
		t.Error("short segment before the wall reported shadowed")
	}
}
