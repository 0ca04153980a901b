package shape

import "github.com/taigrr/ratracer/pkg/math3d"

// Empty is the "no further reflector" sentinel. It never intersects or
// shadows, mirrors every point to itself, and Reach always lands on the
// target so the last step of a path ends on the true receiver.
type Empty struct{}

// ID returns NoID.
func (Empty) ID() ID { return NoID }

// Intersect never hits.
func (Empty) Intersect(math3d.Vec3, math3d.Vec3) (float64, float64, bool) {
	return 0, 0, false
}

// Reach steps from start straight to target.
func (Empty) Reach(start, target math3d.Vec3) (Hit, bool) {
	delta := target.Sub(start)
	return Hit{Direction: delta.Normalize(), Distance: delta.Len()}, true
}

// Mirror returns p unchanged.
func (Empty) Mirror(p math3d.Vec3) math3d.Vec3 { return p }

// IsShadowing is always false.
func (Empty) IsShadowing(math3d.Vec3, math3d.Vec3) bool { return false }

func (Empty) String() string { return "empty" }

func (Empty) sealed() {}
