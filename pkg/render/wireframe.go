package render

import (
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/models"
)

// Wireframe renders 3D lines.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws the visible part of a 3D segment.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	vp := w.camera.ViewProjectionMatrix()
	a, b, ok := clipSegment(vp.MulVec4(math3d.V4FromV3(p1, 1)), vp.MulVec4(math3d.V4FromV3(p2, 1)))
	if !ok {
		return
	}
	na, nb := a.PerspectiveDivide(), b.PerspectiveDivide()
	x1, y1 := toScreen(na.X, na.Y, w.fb.Width, w.fb.Height)
	x2, y2 := toScreen(nb.X, nb.Y, w.fb.Width, w.fb.Height)
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
}

// DrawPolyline draws consecutive segments through points.
func (w *Wireframe) DrawPolyline(points []math3d.Vec3, color Color) {
	for i := 1; i < len(points); i++ {
		w.DrawLine3D(points[i-1], points[i], color)
	}
}

// DrawMesh draws every edge of a mesh.
func (w *Wireframe) DrawMesh(m *models.Mesh, color Color) {
	for _, e := range m.Edges() {
		w.DrawLine3D(m.Vertices[e[0]], m.Vertices[e[1]], color)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XY plane at z=0.
func (w *Wireframe) DrawGrid(size, step float64, color Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	n := int(math.Floor(size / step))
	for i := 0; i <= n; i++ {
		v := -half + float64(i)*step
		w.DrawLine3D(math3d.V3(v, -half, 0), math3d.V3(v, half, 0), color)
		w.DrawLine3D(math3d.V3(-half, v, 0), math3d.V3(half, v, 0), color)
	}
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	for _, d := range []math3d.Vec3{{X: h}, {Y: h}, {Z: h}} {
		w.DrawLine3D(pos.Sub(d), pos.Add(d), color)
	}
}

// DrawMarker draws a screen-space square of half-size r at pos.
func (w *Wireframe) DrawMarker(pos math3d.Vec3, r int, color Color) {
	x, y, _, ok := w.camera.WorldToScreen(pos, w.fb.Width, w.fb.Height)
	if !ok {
		return
	}
	w.fb.DrawMarker(int(x), int(y), r, color)
}

// clipSegment clips a clip-space segment against the view volume
// -w <= x, y, z <= w (Liang-Barsky).
func clipSegment(a, b math3d.Vec4) (math3d.Vec4, math3d.Vec4, bool) {
	dists := [6]func(math3d.Vec4) float64{
		func(v math3d.Vec4) float64 { return v.W + v.X },
		func(v math3d.Vec4) float64 { return v.W - v.X },
		func(v math3d.Vec4) float64 { return v.W + v.Y },
		func(v math3d.Vec4) float64 { return v.W - v.Y },
		func(v math3d.Vec4) float64 { return v.W + v.Z },
		func(v math3d.Vec4) float64 { return v.W - v.Z },
	}
	t0, t1 := 0.0, 1.0
	for _, d := range dists {
		da, db := d(a), d(b)
		switch {
		case da < 0 && db < 0:
			return a, b, false
		case da < 0:
			t0 = math.Max(t0, da/(da-db))
		case db < 0:
			t1 = math.Min(t1, da/(da-db))
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return a.Lerp(b, t0), a.Lerp(b, t1), true
}
