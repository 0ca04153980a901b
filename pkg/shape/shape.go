// Package shape defines the reflecting surfaces a scene is built from.
//
// The set of shapes is closed: a Shape is either a *Plane or an Empty
// sentinel. Callers switch on the concrete type when they need to.
package shape

import (
	"strconv"
	"sync/atomic"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// ID identifies a shape for its whole lifetime. IDs are process-unique and
// never reused.
type ID uint64

// NoID labels the terminal segment of a path and the Empty sentinel.
const NoID ID = 0

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// String formats the id as a decimal number, or "-" for NoID.
func (id ID) String() string {
	if id == NoID {
		return "-"
	}
	return strconv.FormatUint(uint64(id), 10)
}

// Hit is the outcome of one forward step toward a target.
type Hit struct {
	Direction math3d.Vec3 // unit direction of the step
	Distance  float64     // length of the step
	Cosine    float64     // signed incidence cosine, 0 for the terminal step
}

// End returns the breakpoint reached from start.
func (h Hit) End(start math3d.Vec3) math3d.Vec3 {
	return start.Add(h.Direction.Scale(h.Distance))
}

// Shape is a reflecting surface with identity.
type Shape interface {
	// ID returns the shape's identity.
	ID() ID
	// Intersect casts a ray from start along the unit direction dir.
	// It reports the distance to the surface and the signed incidence
	// cosine, or ok=false when the ray misses.
	Intersect(start, dir math3d.Vec3) (dist, cos float64, ok bool)
	// Reach steps from start toward target, stopping on the surface.
	Reach(start, target math3d.Vec3) (Hit, bool)
	// Mirror returns the mirror image of p.
	Mirror(p math3d.Vec3) math3d.Vec3
	// IsShadowing reports whether the surface crosses the open segment
	// from start to start+delta. delta is not normalized.
	IsShadowing(start, delta math3d.Vec3) bool

	String() string
	sealed()
}
