package models

import (
	"fmt"

	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/radio"
	"github.com/taigrr/ratracer/pkg/shape"
)

// Surface is a reflecting plane recovered from a mesh.
type Surface struct {
	Name     string
	Plane    *shape.Plane
	Material radio.MaterialSpec
	Mesh     *Mesh
	RMS      float64
}

// Surface fits a plane to the mesh. The normal points to the front side of
// the triangles. Meshes whose vertices lie farther than maxRMS from the
// plane on average are rejected; maxRMS <= 0 disables the check.
func (m *Mesh) Surface(maxRMS float64) (Surface, error) {
	fit, err := FitPlane(m.Vertices)
	if err != nil {
		return Surface{}, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	if maxRMS > 0 && fit.RMS > maxRMS {
		return Surface{}, fmt.Errorf("mesh %q: rms %.3g exceeds %.3g: %w", m.Name, fit.RMS, maxRMS, ErrNotPlanar)
	}

	normal := fit.Normal
	if normal.Dot(m.AreaNormal()) < 0 {
		normal = normal.Negate()
	}
	plane, err := shape.NewPlane(fit.Centroid, normal)
	if err != nil {
		return Surface{}, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return Surface{Name: m.Name, Plane: plane, Material: m.Material, Mesh: m, RMS: fit.RMS}, nil
}

// LoadSurfaces loads a glTF or GLB file and turns every mesh into a
// reflecting surface.
func LoadSurfaces(path string, maxRMS float64) ([]Surface, error) {
	meshes, err := LoadMeshes(path)
	if err != nil {
		return nil, err
	}
	surfaces := make([]Surface, 0, len(meshes))
	for _, m := range meshes {
		s, err := m.Surface(maxRMS)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

// Quad returns a square mesh of half-size r centred on anchor and
// perpendicular to normal, for drawing planes that have no mesh.
func Quad(name string, anchor, normal math3d.Vec3, r float64) *Mesh {
	n := normal.Normalize()
	ref := math3d.V3(0, 0, 1)
	if abs := n.Dot(ref); abs > 0.9 || abs < -0.9 {
		ref = math3d.V3(1, 0, 0)
	}
	u := ref.Cross(n).Normalize().Scale(r)
	v := n.Cross(u)

	m := NewMesh(name)
	m.Vertices = []math3d.Vec3{
		anchor.Sub(u).Sub(v),
		anchor.Add(u).Sub(v),
		anchor.Add(u).Add(v),
		anchor.Sub(u).Add(v),
	}
	m.Faces = [][3]int{{0, 1, 2}, {0, 2, 3}}
	m.CalculateBounds()
	return m
}
