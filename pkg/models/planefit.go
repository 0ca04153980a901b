package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/taigrr/ratracer/pkg/math3d"
)

// ErrNotPlanar is returned when a point set does not span a plane.
var ErrNotPlanar = errors.New("points do not span a plane")

// PlaneFit is a least-squares plane through a point set.
type PlaneFit struct {
	Centroid math3d.Vec3
	Normal   math3d.Vec3 // unit length, sign arbitrary
	RMS      float64     // root mean square distance of the points to the plane
}

// FitPlane fits a plane to points by orthogonal least squares. The normal
// is the right singular vector of the centred points with the smallest
// singular value.
func FitPlane(points []math3d.Vec3) (PlaneFit, error) {
	if len(points) < 3 {
		return PlaneFit{}, fmt.Errorf("%d points: %w", len(points), ErrNotPlanar)
	}

	var centroid math3d.Vec3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Div(float64(len(points)))

	a := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		d := p.Sub(centroid)
		a.SetRow(i, []float64{d.X, d.Y, d.Z})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return PlaneFit{}, fmt.Errorf("svd did not converge: %w", ErrNotPlanar)
	}
	values := svd.Values(nil) // descending
	scale := values[0]
	if scale < math3d.Tolerance || values[1] < math3d.Tolerance*scale {
		return PlaneFit{}, fmt.Errorf("degenerate point set: %w", ErrNotPlanar)
	}

	var v mat.Dense
	svd.VTo(&v)
	normal := math3d.V3(v.At(0, 2), v.At(1, 2), v.At(2, 2)).Normalize()

	return PlaneFit{
		Centroid: centroid,
		Normal:   normal,
		RMS:      values[2] / math.Sqrt(float64(len(points))),
	}, nil
}
