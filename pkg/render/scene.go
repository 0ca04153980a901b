package render

import (
	"github.com/taigrr/ratracer/pkg/models"
	"github.com/taigrr/ratracer/pkg/tracer"
)

var surfacePalette = []Color{
	RGB(90, 110, 150),
	RGB(120, 100, 80),
	RGB(80, 130, 110),
	RGB(130, 90, 130),
	RGB(110, 120, 90),
}

// SurfaceColor returns the fill color of the i-th surface.
func SurfaceColor(i int) Color {
	return surfacePalette[i%len(surfacePalette)]
}

// SceneView draws reflecting surfaces together with the paths of a trace
// result.
type SceneView struct {
	Surfaces   []*models.Mesh
	Result     *tracer.Result
	Selected   int  // path drawn on top, others dimmed; -1 draws all alike
	Filled     bool // fill surfaces instead of outlining them
	Grid       bool
	Background Color
}

// NewSceneView returns a view with filled surfaces and no selection.
func NewSceneView(surfaces []*models.Mesh, res *tracer.Result) *SceneView {
	return &SceneView{
		Surfaces:   surfaces,
		Result:     res,
		Selected:   -1,
		Filled:     true,
		Background: ColorBackground,
	}
}

// Bounds returns the box around the end points, every path and every
// surface.
func (v *SceneView) Bounds() AABB {
	var box AABB
	started := false
	add := func(b AABB) {
		if !started {
			box, started = b, true
			return
		}
		box = box.Union(b)
	}
	if v.Result != nil {
		add(AABB{Min: v.Result.Start, Max: v.Result.Start})
		box = box.Extend(v.Result.End)
		for i := range v.Result.Len() {
			for _, p := range v.Result.Breakpoints(i) {
				box = box.Extend(p)
			}
		}
	}
	for _, m := range v.Surfaces {
		add(MeshBounds(m))
	}
	return box
}

// Render clears fb and draws the scene through cam.
func (v *SceneView) Render(fb *Framebuffer, cam *Camera) {
	fb.Clear(v.Background)
	cam.SetAspectRatio(aspect(fb))

	if v.Filled {
		rast := NewRasterizer(cam, fb)
		for i, m := range v.Surfaces {
			rast.DrawMesh(m, SurfaceColor(i))
		}
	}

	wire := NewWireframe(cam, fb)
	box := v.Bounds()
	if v.Grid {
		size := 2 * max(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)
		wire.DrawGrid(size, size/20, RGB(50, 50, 60))
		wire.DrawAxes(size / 4)
	}
	for i, m := range v.Surfaces {
		wire.DrawMesh(m, Shade(SurfaceColor(i), 1.6))
	}

	res := v.Result
	if res == nil {
		return
	}
	for i := range res.Len() {
		if i == v.Selected {
			continue
		}
		c := PathColor(res.Path(i).Reflections())
		if v.Selected >= 0 {
			c = Shade(c, 0.35)
		}
		wire.DrawPolyline(res.Breakpoints(i), c)
	}
	if v.Selected >= 0 && v.Selected < res.Len() {
		points := res.Breakpoints(v.Selected)
		wire.DrawPolyline(points, PathColor(res.Path(v.Selected).Reflections()))
		// Reflection points
		size := box.Max.Sub(box.Min).Len() / 40
		for _, p := range points[1 : len(points)-1] {
			wire.DrawPoint(p, size, ColorMagenta)
		}
	}
	wire.DrawMarker(res.Start, 1, ColorGreen)
	wire.DrawMarker(res.End, 1, ColorRed)
}

// Snapshot renders v framed from the default orbit into a width x height
// PNG at path.
func Snapshot(v *SceneView, width, height int, path string) error {
	fb := NewFramebuffer(width, height)
	cam := NewCamera()
	box := v.Bounds()
	cam.Frame(box)
	v.Render(fb, cam)
	return fb.SavePNG(path)
}

func aspect(fb *Framebuffer) float64 {
	if fb.Height == 0 {
		return 1
	}
	return float64(fb.Width) / float64(fb.Height)
}
