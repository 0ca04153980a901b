package render

import (
	"math"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/models"
)

// Rasterizer fills surface triangles with depth testing. Triangles are
// two-sided: a reflector is visible from both half spaces.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64    // Depth buffer (row-major)
	CullingStats CullingStats // Statistics for debugging/benchmarking
}

// CullingStats tracks frustum culling of meshes.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.ClearDepth()
	return r
}

// ClearDepth resets the depth buffer and culling statistics, resizing the
// buffer if the framebuffer changed.
func (r *Rasterizer) ClearDepth() {
	if len(r.zbuffer) != r.fb.Width*r.fb.Height {
		r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	}
	for i := range r.zbuffer {
		r.zbuffer[i] = math.MaxFloat64
	}
	r.CullingStats = CullingStats{}
}

// Depth returns the stored depth at (x, y), MaxFloat64 where nothing was
// drawn.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.fb.Width+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
}

// DrawTriangle rasterizes a flat-colored triangle. Triangles with a vertex
// behind the eye are skipped.
func (r *Rasterizer) DrawTriangle(v0, v1, v2 math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	var sv [3]screenVertex
	for i, v := range [3]math3d.Vec3{v0, v1, v2} {
		clip := viewProj.MulVec4(math3d.V4FromV3(v, 1))
		if clip.W <= 0 {
			return
		}
		ndc := clip.PerspectiveDivide()
		sv[i].X, sv[i].Y = toScreen(ndc.X, ndc.Y, r.fb.Width, r.fb.Height)
		sv[i].Z = ndc.Z
	}

	// Degenerate in screen space
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if math.Abs(area) < 1e-12 {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.fb.Width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.fb.Height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z < -1 || z > 1 {
				continue
			}
			idx := y*r.fb.Width + x
			if z >= r.zbuffer[idx] {
				continue
			}
			r.zbuffer[idx] = z
			r.fb.SetPixel(x, y, color)
		}
	}
}

// DrawMesh fills a mesh with base shaded by how squarely each face is
// seen. Meshes outside the frustum are skipped; the return value reports
// whether the mesh was drawn.
func (r *Rasterizer) DrawMesh(m *models.Mesh, base Color) bool {
	r.CullingStats.MeshesTested++
	if !r.camera.Frustum().IntersectAABB(MeshBounds(m)) {
		r.CullingStats.MeshesCulled++
		return false
	}
	r.CullingStats.MeshesDrawn++

	eye := r.camera.Position()
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		view := eye.Sub(a.Add(b).Add(c).Scale(1.0 / 3)).Normalize()
		r.DrawTriangle(a, b, c, Shade(base, 0.35+0.65*math.Abs(n.Dot(view))))
	}
	return true
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
