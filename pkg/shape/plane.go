package shape

import (
	"fmt"
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// Plane is an infinite flat reflector given by an anchor point on the
// surface and a unit normal.
type Plane struct {
	id     ID
	anchor math3d.Vec3
	normal math3d.Vec3
}

// NewPlane creates a plane through anchor with the given normal. The normal
// is normalized; a normal shorter than math3d.Tolerance is rejected.
func NewPlane(anchor, normal math3d.Vec3) (*Plane, error) {
	if !anchor.IsFinite() || !normal.IsFinite() {
		return nil, &SurfaceError{Anchor: anchor, Normal: normal, Reason: "non-finite coordinates"}
	}
	n := normal.Normalize()
	if n == math3d.Zero3() {
		return nil, &SurfaceError{Anchor: anchor, Normal: normal, Reason: "degenerate normal"}
	}
	return &Plane{id: nextID(), anchor: anchor, normal: n}, nil
}

// MustPlane is like NewPlane but panics on error. It is meant for fixtures.
func MustPlane(anchor, normal math3d.Vec3) *Plane {
	p, err := NewPlane(anchor, normal)
	if err != nil {
		panic(err)
	}
	return p
}

// ID returns the plane's identity.
func (p *Plane) ID() ID { return p.id }

// Anchor returns the point the plane was constructed through.
func (p *Plane) Anchor() math3d.Vec3 { return p.anchor }

// Normal returns the unit normal.
func (p *Plane) Normal() math3d.Vec3 { return p.normal }

// SignedDistance returns (anchor - point) · normal. It is positive when the
// normal points from point toward the plane.
func (p *Plane) SignedDistance(point math3d.Vec3) float64 {
	return p.anchor.Sub(point).Dot(p.normal)
}

// DistanceTo returns the unsigned distance from point to the plane.
func (p *Plane) DistanceTo(point math3d.Vec3) float64 {
	return math.Abs(p.SignedDistance(point))
}

// IncidenceCosine returns the signed cosine between dir and the normal.
func (p *Plane) IncidenceCosine(dir math3d.Vec3) float64 {
	return dir.Dot(p.normal)
}

// GrazingCosine returns the absolute cosine between dir and the normal.
func (p *Plane) GrazingCosine(dir math3d.Vec3) float64 {
	return math.Abs(p.IncidenceCosine(dir))
}

// Intersect casts a ray from start along the unit vector dir. Near-parallel
// rays and surfaces behind the origin are misses.
func (p *Plane) Intersect(start, dir math3d.Vec3) (dist, cos float64, ok bool) {
	cos = p.IncidenceCosine(dir)
	if math3d.NearZero(cos) {
		return 0, 0, false
	}
	dist = p.SignedDistance(start) / cos
	if dist <= 0 {
		return 0, 0, false
	}
	return dist, cos, true
}

// IsIntersected reports whether the ray from start along dir hits the plane.
func (p *Plane) IsIntersected(start, dir math3d.Vec3) bool {
	_, _, ok := p.Intersect(start, dir)
	return ok
}

// Reach walks from start toward the image point target and stops on the
// plane. The step fails if the plane is missed or if it lies past target,
// since then target is not a mirror image seen through this plane.
func (p *Plane) Reach(start, target math3d.Vec3) (Hit, bool) {
	delta := target.Sub(start)
	span := delta.Len()
	if span < math3d.Tolerance {
		return Hit{}, false
	}
	dir := delta.Div(span)
	dist, cos, ok := p.Intersect(start, dir)
	if !ok || dist > span {
		return Hit{}, false
	}
	return Hit{Direction: dir, Distance: dist, Cosine: cos}, true
}

// IsShadowing reports whether the plane crosses the segment from start to
// start+delta, ignoring ShadowMargin at both ends.
func (p *Plane) IsShadowing(start, delta math3d.Vec3) bool {
	cos := p.IncidenceCosine(delta)
	if math.Abs(cos) < math3d.Tolerance*delta.Len() {
		return false
	}
	t := p.SignedDistance(start) / cos
	return t > math3d.ShadowMargin && t < 1-math3d.ShadowMargin
}

// Mirror returns point + 2·SignedDistance(point)·normal.
func (p *Plane) Mirror(point math3d.Vec3) math3d.Vec3 {
	return point.Add(p.normal.Scale(2 * p.SignedDistance(point)))
}

// Project returns the foot of the perpendicular from point to the plane.
func (p *Plane) Project(point math3d.Vec3) math3d.Vec3 {
	return point.Add(p.normal.Scale(p.SignedDistance(point)))
}

// String formats the plane as plane(anchor normal).
func (p *Plane) String() string {
	return fmt.Sprintf("plane(%v %v)", p.anchor, p.normal)
}

func (*Plane) sealed() {}
