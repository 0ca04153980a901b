package models

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/radio"
)

func TestFitPlane(t *testing.T) {
	points := []math3d.Vec3{
		math3d.V3(0, 0, 2), math3d.V3(4, 0, 2), math3d.V3(4, 3, 2),
		math3d.V3(0, 3, 2), math3d.V3(1, 1, 2),
	}
	fit, err := FitPlane(points)
	if err != nil {
		t.Fatalf("FitPlane: %v", err)
	}
	if math.Abs(math.Abs(fit.Normal.Z)-1) > 1e-9 {
		t.Errorf("Normal = %v, want (0, 0, ±1)", fit.Normal)
	}
	if math.Abs(fit.Centroid.Z-2) > 1e-9 || fit.RMS > 1e-9 {
		t.Errorf("Centroid = %v, RMS = %v", fit.Centroid, fit.RMS)
	}
}

func TestFitPlaneTilted(t *testing.T) {
	want := math3d.V3(1, -2, 2).Normalize()
	u := math3d.V3(2, 1, 0).Normalize()
	v := want.Cross(u)
	var points []math3d.Vec3
	for i := range 5 {
		for j := range 5 {
			points = append(points, math3d.V3(1, 1, 1).Add(u.Scale(float64(i))).Add(v.Scale(float64(j))))
		}
	}
	fit, err := FitPlane(points)
	if err != nil {
		t.Fatalf("FitPlane: %v", err)
	}
	if math.Abs(math.Abs(fit.Normal.Dot(want))-1) > 1e-9 {
		t.Errorf("Normal = %v, want ±%v", fit.Normal, want)
	}
}

func TestFitPlaneDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []math3d.Vec3
	}{
		{"too few", []math3d.Vec3{math3d.Zero3(), math3d.V3(1, 0, 0)}},
		{"collinear", []math3d.Vec3{math3d.Zero3(), math3d.V3(1, 1, 1), math3d.V3(2, 2, 2), math3d.V3(5, 5, 5)}},
		{"coincident", []math3d.Vec3{math3d.V3(1, 2, 3), math3d.V3(1, 2, 3), math3d.V3(1, 2, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FitPlane(tt.points); !errors.Is(err, ErrNotPlanar) {
				t.Errorf("err = %v, want ErrNotPlanar", err)
			}
		})
	}
}

func TestMeshSurfaceOrientation(t *testing.T) {
	m := Quad("wall", math3d.V3(5, 0, 2), math3d.V3(-1, 0, 0), 3)
	s, err := m.Surface(1e-6)
	if err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if !s.Plane.Normal().ApproxEqual(math3d.V3(-1, 0, 0), 1e-9) {
		t.Errorf("Normal = %v, want (-1, 0, 0)", s.Plane.Normal())
	}
	if s.Plane.DistanceTo(math3d.V3(5, 7, -3)) > 1e-9 {
		t.Errorf("plane %v does not pass through x = 5", s.Plane)
	}

	// Reversing the winding flips the normal.
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{f[0], f[2], f[1]}
	}
	s, err = m.Surface(0)
	if err != nil {
		t.Fatalf("Surface: %v", err)
	}
	if !s.Plane.Normal().ApproxEqual(math3d.V3(1, 0, 0), 1e-9) {
		t.Errorf("Normal = %v, want (1, 0, 0)", s.Plane.Normal())
	}
}

func TestMeshSurfaceRejectsBentMesh(t *testing.T) {
	m := NewMesh("fold")
	m.Vertices = []math3d.Vec3{
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 1),
	}
	m.Faces = [][3]int{{0, 1, 2}, {0, 2, 3}}
	if _, err := m.Surface(1e-3); !errors.Is(err, ErrNotPlanar) {
		t.Errorf("err = %v, want ErrNotPlanar", err)
	}
}

func TestMeshEdges(t *testing.T) {
	m := Quad("q", math3d.Zero3(), math3d.V3(0, 0, 1), 1)
	if got := len(m.Edges()); got != 5 {
		t.Errorf("quad has %d edges, want 5", got)
	}
	if m.TriangleCount() != 2 || len(m.Vertices) != 4 {
		t.Errorf("quad has %d triangles and %d vertices", m.TriangleCount(), len(m.Vertices))
	}
}

// writeGLB stores meshes as a binary glTF file with float positions and
// uint16 indices.
func writeGLB(t *testing.T, meshes []*Mesh, extras []any) string {
	t.Helper()
	return saveGLB(t, glbDocument(meshes, extras))
}

func glbDocument(meshes []*Mesh, extras []any) *gltf.Document {
	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{}},
	}
	var data []byte
	for mi, m := range meshes {
		posOffset := len(data)
		for _, v := range m.Vertices {
			for _, c := range []float64{v.X, v.Y, v.Z} {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(c)))
			}
		}
		idxOffset := len(data)
		for _, f := range m.Faces {
			for _, i := range f {
				data = binary.LittleEndian.AppendUint16(data, uint16(i))
			}
		}
		for len(data)%4 != 0 {
			data = append(data, 0)
		}

		views := len(doc.BufferViews)
		doc.BufferViews = append(doc.BufferViews,
			&gltf.BufferView{Buffer: 0, ByteOffset: posOffset, ByteLength: idxOffset - posOffset},
			&gltf.BufferView{Buffer: 0, ByteOffset: idxOffset, ByteLength: len(m.Faces) * 6},
		)
		accessors := len(doc.Accessors)
		doc.Accessors = append(doc.Accessors,
			&gltf.Accessor{BufferView: gltf.Index(views), ComponentType: gltf.ComponentFloat, Count: len(m.Vertices), Type: gltf.AccessorVec3},
			&gltf.Accessor{BufferView: gltf.Index(views + 1), ComponentType: gltf.ComponentUshort, Count: len(m.Faces) * 3, Type: gltf.AccessorScalar},
		)
		mesh := &gltf.Mesh{
			Name: m.Name,
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: accessors},
				Indices:    gltf.Index(accessors + 1),
			}},
		}
		if mi < len(extras) {
			mesh.Extras = extras[mi]
		}
		doc.Meshes = append(doc.Meshes, mesh)
	}
	doc.Buffers[0].Data = data
	doc.Buffers[0].ByteLength = len(data)
	return doc
}

func saveGLB(t *testing.T, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadSurfaces(t *testing.T) {
	ground := Quad("ground", math3d.Zero3(), math3d.V3(0, 0, 1), 20)
	ceiling := Quad("ceiling", math3d.V3(0, 0, 10), math3d.V3(0, 0, -1), 20)
	path := writeGLB(t, []*Mesh{ground, ceiling}, []any{
		map[string]any{"material": map[string]any{"kind": "fresnel", "permittivity": 15, "conductivity": 0.005}},
	})

	surfaces, err := LoadSurfaces(path, 1e-4)
	if err != nil {
		t.Fatalf("LoadSurfaces: %v", err)
	}
	if len(surfaces) != 2 {
		t.Fatalf("got %d surfaces, want 2", len(surfaces))
	}
	if surfaces[0].Name != "ground" || !surfaces[0].Plane.Normal().ApproxEqual(math3d.V3(0, 0, 1), 1e-6) {
		t.Errorf("ground = %s %v", surfaces[0].Name, surfaces[0].Plane)
	}
	want := radio.MaterialSpec{Kind: "fresnel", Permittivity: 15, Conductivity: 0.005}
	if surfaces[0].Material != want {
		t.Errorf("ground material = %+v, want %+v", surfaces[0].Material, want)
	}
	if surfaces[1].Material.Kind != "" {
		t.Errorf("ceiling material = %+v, want none", surfaces[1].Material)
	}
	if surfaces[1].Plane.DistanceTo(math3d.V3(3, 3, 10)) > 1e-6 {
		t.Errorf("ceiling plane %v misses z = 10", surfaces[1].Plane)
	}
}

func TestLoadMeshesInvalidPath(t *testing.T) {
	if _, err := LoadMeshes("/nonexistent/path.glb"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadMeshesNodeTransforms(t *testing.T) {
	doc := glbDocument([]*Mesh{Quad("panel", math3d.Zero3(), math3d.V3(0, 0, 1), 1)}, nil)
	doc.Nodes = []*gltf.Node{
		{Name: "room", Translation: [3]float64{0, 0, 5}, Children: []int{1, 2}},
		{Name: "ceiling", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 5}, Rotation: [4]float64{1, 0, 0, 0}},
		{Name: "floor", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, -5}, Scale: [3]float64{3, 3, 3}},
	}
	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}

	surfaces, err := LoadSurfaces(saveGLB(t, doc), 1e-4)
	if err != nil {
		t.Fatalf("LoadSurfaces: %v", err)
	}
	if len(surfaces) != 2 {
		t.Fatalf("got %d surfaces, want 2", len(surfaces))
	}

	tests := []struct {
		name   string
		anchor math3d.Vec3
		normal math3d.Vec3
		extent float64
	}{
		{"ceiling", math3d.V3(0, 0, 10), math3d.V3(0, 0, -1), 1},
		{"floor", math3d.V3(0, 0, 0), math3d.V3(0, 0, 1), 3},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := surfaces[i]
			if s.Name != tt.name {
				t.Errorf("Name = %q, want %q", s.Name, tt.name)
			}
			if !s.Plane.Anchor().ApproxEqual(tt.anchor, 1e-6) {
				t.Errorf("anchor = %v, want %v", s.Plane.Anchor(), tt.anchor)
			}
			if !s.Plane.Normal().ApproxEqual(tt.normal, 1e-6) {
				t.Errorf("normal = %v, want %v", s.Plane.Normal(), tt.normal)
			}
			if got := s.Mesh.BoundsMax.X; math.Abs(got-tt.extent) > 1e-6 {
				t.Errorf("BoundsMax.X = %v, want %v", got, tt.extent)
			}
		})
	}
}
