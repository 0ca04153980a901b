package tracer

import (
	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
)

// Reason tells why a candidate sequence was dropped.
type Reason int

const (
	// Missed means the ray toward an image did not hit its reflector.
	Missed Reason = iota + 1
	// Shadowed means a surface blocked one of the legs.
	Shadowed
)

func (r Reason) String() string {
	switch r {
	case Missed:
		return "missed"
	case Shadowed:
		return "shadowed"
	default:
		return "unknown"
	}
}

// Rejection describes a dropped candidate.
type Rejection struct {
	Reason Reason
	Leg    int      // index of the failing leg in travel order
	Shape  shape.ID // reflector that was missed, or the blocking surface
}

// Observer receives tracing events. Slices passed to it are only valid for
// the duration of the call. Implementations used with TraceParallel must
// be safe for concurrent use.
type Observer interface {
	Candidate(seq []shape.ID)
	Images(seq []shape.ID, images []math3d.Vec3)
	Intersection(s shape.Shape, image, point math3d.Vec3)
	Rejected(seq []shape.ID, r Rejection)
	Accepted(seq []shape.ID, start math3d.Vec3, p Path)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Candidate([]shape.ID) {}
func (NopObserver) Images([]shape.ID, []math3d.Vec3) {}
func (NopObserver) Intersection(shape.Shape, math3d.Vec3, math3d.Vec3) {}
func (NopObserver) Rejected([]shape.ID, Rejection) {}
func (NopObserver) Accepted([]shape.ID, math3d.Vec3, Path) {}
