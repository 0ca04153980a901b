package tracer

import (
	"fmt"
	"strings"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/shape"
)

// Segment is one straight leg of a ray path.
type Segment struct {
	Direction math3d.Vec3 // unit direction
	Length    float64
	Shape     shape.ID // reflector at the end of the leg, NoID for the last leg
	Cosine    float64  // signed incidence cosine at Shape, 0 for the last leg
}

// Path is a fully traced ray from transmitter to receiver. Legs are in
// travel order; the last one always ends on the receiver.
type Path []Segment

// Reflections returns the number of reflecting legs.
func (p Path) Reflections() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Shapes returns the reflector ids in the order the ray meets them.
func (p Path) Shapes() []shape.ID {
	ids := make([]shape.ID, 0, p.Reflections())
	for _, s := range p {
		if s.Shape != shape.NoID {
			ids = append(ids, s.Shape)
		}
	}
	return ids
}

// Length returns the total travelled distance.
func (p Path) Length() float64 {
	var l float64
	for _, s := range p {
		l += s.Length
	}
	return l
}

// Breakpoints integrates the legs from start and returns every corner of
// the path, start and receiver included.
func (p Path) Breakpoints(start math3d.Vec3) []math3d.Vec3 {
	points := make([]math3d.Vec3, 0, len(p)+1)
	points = append(points, start)
	for _, s := range p {
		start = start.Add(s.Direction.Scale(s.Length))
		points = append(points, start)
	}
	return points
}

// Result collects the paths traced for one query.
type Result struct {
	Start math3d.Vec3
	End   math3d.Vec3

	paths []Path
}

// NewResult creates an empty result for the given endpoints.
func NewResult(start, end math3d.Vec3) *Result {
	return &Result{Start: start, End: end}
}

// Refresh drops all paths and sets new endpoints.
func (r *Result) Refresh(start, end math3d.Vec3) {
	clear(r.paths)
	r.paths = r.paths[:0]
	r.Start, r.End = start, end
}

// Save retains a finished path.
func (r *Result) Save(p Path) {
	r.paths = append(r.paths, p)
}

// Len returns the number of retained paths.
func (r *Result) Len() int {
	return len(r.paths)
}

// Path returns the i-th path.
func (r *Result) Path(i int) Path {
	return r.paths[i]
}

// Segments returns the number of legs of the i-th path.
func (r *Result) Segments(i int) int {
	return len(r.paths[i])
}

// Breakpoints returns the corners of the i-th path.
func (r *Result) Breakpoints(i int) []math3d.Vec3 {
	return r.paths[i].Breakpoints(r.Start)
}

// Paths returns the corners of every retained path.
func (r *Result) Paths() [][]math3d.Vec3 {
	out := make([][]math3d.Vec3, len(r.paths))
	for i := range r.paths {
		out[i] = r.Breakpoints(i)
	}
	return out
}

// Shapes returns the reflector ids of the i-th path in travel order.
func (r *Result) Shapes(i int) []shape.ID {
	return r.paths[i].Shapes()
}

// Length returns the travelled distance of the i-th path.
func (r *Result) Length(i int) float64 {
	return r.paths[i].Length()
}

// String lists one path per line as p0->p1->...->pn.
func (r *Result) String() string {
	var b strings.Builder
	for i := range r.paths {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(View(r.Breakpoints(i), "->"))
	}
	return b.String()
}

// View joins points with sep. A nil slice renders as "None".
func View[T fmt.Stringer](points []T, sep string) string {
	if points == nil {
		return "None"
	}
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}
