// Package scene holds the immutable set of reflecting surfaces a tracer
// queries.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
)

// ErrDuplicateSurface is returned when the same surface is added twice.
var ErrDuplicateSurface = errors.New("duplicate surface")

// Scene maps surface ids to planes. It is never mutated after New returns
// and is safe for concurrent reads.
type Scene struct {
	planes map[shape.ID]*shape.Plane
	ids    []shape.ID // ascending
	order  []*shape.Plane
	empty  shape.Empty
}

// New builds a scene from planes. Nil entries are skipped.
func New(planes ...*shape.Plane) (*Scene, error) {
	s := &Scene{planes: make(map[shape.ID]*shape.Plane, len(planes))}
	for _, p := range planes {
		if p == nil {
			continue
		}
		if _, ok := s.planes[p.ID()]; ok {
			return nil, fmt.Errorf("add %v (id %v): %w", p, p.ID(), ErrDuplicateSurface)
		}
		s.planes[p.ID()] = p
		s.ids = append(s.ids, p.ID())
	}
	slices.Sort(s.ids)
	s.order = make([]*shape.Plane, len(s.ids))
	for i, id := range s.ids {
		s.order[i] = s.planes[id]
	}
	return s, nil
}

// Len returns the number of surfaces.
func (s *Scene) Len() int {
	return len(s.ids)
}

// IDs returns the surface ids in ascending order. The slice is shared and
// must not be modified.
func (s *Scene) IDs() []shape.ID {
	return s.ids
}

// Planes returns the surfaces in ascending id order. The slice is shared and
// must not be modified.
func (s *Scene) Planes() []*shape.Plane {
	return s.order
}

// Plane returns the surface with the given id.
func (s *Scene) Plane(id shape.ID) (*shape.Plane, bool) {
	p, ok := s.planes[id]
	return p, ok
}

// Shape resolves id to a shape. NoID and unknown ids resolve to the scene's
// Empty sentinel.
func (s *Scene) Shape(id shape.ID) shape.Shape {
	if p, ok := s.planes[id]; ok {
		return p
	}
	return s.empty
}

// Empty returns the scene's sentinel shape.
func (s *Scene) Empty() shape.Shape {
	return s.empty
}

// Shadowing returns the first surface, in id order, that crosses the open
// segment from start to start+delta.
func (s *Scene) Shadowing(start, delta math3d.Vec3) (shape.ID, bool) {
	for _, p := range s.order {
		if p.IsShadowing(start, delta) {
			return p.ID(), true
		}
	}
	return shape.NoID, false
}

// Shadowed reports whether any surface crosses the segment from start to
// start+delta.
func (s *Scene) Shadowed(start, delta math3d.Vec3) bool {
	_, ok := s.Shadowing(start, delta)
	return ok
}
