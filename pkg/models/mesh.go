// Package models imports reflecting surfaces from 3D models. Every glTF
// mesh is one flat surface; its vertices are fitted with a plane.
package models

import (
	"github.com/taigrr/ratracer/pkg/math3d"
	"github.com/taigrr/ratracer/pkg/radio"
)

// Mesh is the triangle geometry of one surface.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Faces    [][3]int // indices into Vertices, counter-clockwise seen from the front
	Material radio.MaterialSpec

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}


// AreaNormal returns the sum of the face normals weighted by twice their
// area. Its direction is the front side of a flat mesh.
func (m *Mesh) AreaNormal() math3d.Vec3 {
	var n math3d.Vec3
	for _, f := range m.Faces {
		v0, v1, v2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n = n.Add(v1.Sub(v0).Cross(v2.Sub(v0)))
	}
	return n
}

// Edges returns each undirected triangle edge once.
func (m *Mesh) Edges() [][2]int {
	seen := make(map[[2]int]bool, len(m.Faces)*3)
	var edges [][2]int
	for _, f := range m.Faces {
		for i := range 3 {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			if !seen[[2]int{a, b}] {
				seen[[2]int{a, b}] = true
				edges = append(edges, [2]int{a, b})
			}
		}
	}
	return edges
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}
