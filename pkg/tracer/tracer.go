// Package tracer finds specular ray paths between two points with the
// image method.
//
// For every sequence of reflectors the receiver is mirrored backward through
// the sequence, then a ray is walked forward from the transmitter toward each
// image in turn. A sequence contributes a path only if every leg hits its
// reflector and no surface of the scene blocks any leg.
package tracer

import (
	"fmt"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/scene"
	"github.com/taigrr/ratracer/pkg/shape"
)

// imagesCap bounds the preallocated image buffer; longer sequences grow it.
const imagesCap = 16

// Tracer traces queries against one immutable scene. A Tracer is safe for
// concurrent use when its Observer is.
type Tracer struct {
	scene *scene.Scene
	opts  options
}

// New creates a tracer for s.
func New(s *scene.Scene, opts ...Option) *Tracer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = defaultOptions().workers
	}
	return &Tracer{scene: s, opts: o}
}

// Scene returns the traced scene.
func (t *Tracer) Scene() *scene.Scene {
	return t.scene
}

// Trace returns every path from start to end with at most maxReflections
// reflections. Paths are ordered by reflection count, then by reflector
// sequence.
func (t *Tracer) Trace(start, end math3d.Vec3, maxReflections int) (*Result, error) {
	res := NewResult(start, end)
	if err := t.TraceInto(res, start, end, maxReflections); err != nil {
		return nil, err
	}
	return res, nil
}

// TraceInto is like Trace but refreshes and fills res instead of
// allocating a new result.
func (t *Tracer) TraceInto(res *Result, start, end math3d.Vec3, maxReflections int) error {
	if err := t.validate(start, end, maxReflections); err != nil {
		return err
	}
	res.Refresh(start, end)

	images := make([]math3d.Vec3, 0, min(maxReflections, imagesCap))
	for seq := range AllSequences(t.scene.IDs(), maxReflections) {
		if p, ok := t.tracePath(start, end, seq, images); ok {
			res.Save(p)
		}
	}
	return nil
}

// TracePath traces a single reflector sequence. Reflectors are met in
// reverse order of seq: seq[len(seq)-1] first, seq[0] last.
func (t *Tracer) TracePath(start, end math3d.Vec3, seq []shape.ID) (Path, bool) {
	return t.tracePath(start, end, seq, make([]math3d.Vec3, 0, len(seq)))
}

func (t *Tracer) validate(start, end math3d.Vec3, maxReflections int) error {
	switch {
	case maxReflections < 0:
		return &QueryError{Field: "maxReflections", Value: maxReflections}
	case !start.IsFinite():
		return &QueryError{Field: "start", Value: start}
	case !end.IsFinite():
		return &QueryError{Field: "end", Value: end}
	}
	if limit := t.opts.maxCandidates; limit > 0 {
		if n := CountAllSequences(t.scene.Len(), maxReflections); n > limit {
			return fmt.Errorf("%d candidates for %d surfaces and %d reflections, limit %d: %w",
				n, t.scene.Len(), maxReflections, limit, ErrCandidateLimit)
		}
	}
	return nil
}

// Images mirrors point through seq: images[0] is point mirrored in seq[0],
// images[i] is images[i-1] mirrored in seq[i]. The result is appended to
// dst.
func (t *Tracer) Images(dst []math3d.Vec3, point math3d.Vec3, seq []shape.ID) []math3d.Vec3 {
	for _, id := range seq {
		point = t.scene.Shape(id).Mirror(point)
		dst = append(dst, point)
	}
	return dst
}

func (t *Tracer) tracePath(start, end math3d.Vec3, seq []shape.ID, buf []math3d.Vec3) (Path, bool) {
	obs := t.opts.observer
	obs.Candidate(seq)

	images := t.Images(buf[:0], end, seq)
	obs.Images(seq, images)

	path := make(Path, 0, len(seq)+1)
	pos := start
	for i := len(seq) - 1; i >= 0; i-- {
		leg := len(path)
		s := t.scene.Shape(seq[i])
		hit, ok := s.Reach(pos, images[i])
		if !ok {
			obs.Rejected(seq, Rejection{Reason: Missed, Leg: leg, Shape: seq[i]})
			return nil, false
		}
		next := hit.End(pos)
		if blocker, shadowed := t.scene.Shadowing(pos, next.Sub(pos)); shadowed {
			obs.Rejected(seq, Rejection{Reason: Shadowed, Leg: leg, Shape: blocker})
			return nil, false
		}
		obs.Intersection(s, images[i], next)
		path = append(path, Segment{
			Direction: hit.Direction,
			Length:    hit.Distance,
			Shape:     seq[i],
			Cosine:    hit.Cosine,
		})
		pos = next
	}

	last, _ := t.scene.Empty().Reach(pos, end)
	if blocker, shadowed := t.scene.Shadowing(pos, end.Sub(pos)); shadowed {
		obs.Rejected(seq, Rejection{Reason: Shadowed, Leg: len(path), Shape: blocker})
		return nil, false
	}
	path = append(path, Segment{
		Direction: last.Direction,
		Length:    last.Distance,
		Shape:     shape.NoID,
	})
	obs.Accepted(seq, start, path)
	return path, true
}
