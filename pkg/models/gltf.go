package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/ratracer/pkg/math3d"
)

// extras is the per-mesh metadata read from the glTF "extras" object.
type extras struct {
	Material json.RawMessage `json:"material"`
}

// LoadMeshes loads every triangle mesh of a glTF or GLB file. Meshes placed
// by nodes of the default scene are moved into world space, once per node
// that uses them. Files without such nodes yield each mesh as stored.
func LoadMeshes(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var meshes []*Mesh
	load := func(mi int, name string, world math3d.Mat4) error {
		m := doc.Meshes[mi]
		if name == "" {
			name = m.Name
		}
		if name == "" {
			name = fmt.Sprintf("mesh%d", mi)
		}
		mesh := NewMesh(name)
		if err := processMesh(doc, m, mesh); err != nil {
			return fmt.Errorf("process mesh %q: %w", name, err)
		}
		if err := readExtras(m.Extras, mesh); err != nil {
			return fmt.Errorf("mesh %q extras: %w", name, err)
		}
		if len(mesh.Faces) == 0 {
			return nil
		}
		mesh.Transform(world)
		meshes = append(meshes, mesh)
		return nil
	}

	placements, err := placeMeshes(doc)
	if err != nil {
		return nil, err
	}
	if len(placements) == 0 {
		for i := range doc.Meshes {
			if err := load(i, "", math3d.Identity()); err != nil {
				return nil, err
			}
		}
		return meshes, nil
	}
	for _, p := range placements {
		if err := load(p.mesh, p.name, p.world); err != nil {
			return nil, err
		}
	}
	return meshes, nil
}

// placement is one node instance of a mesh.
type placement struct {
	mesh  int
	name  string
	world math3d.Mat4
}

// placeMeshes walks the node tree of the default scene (or of the first
// scene) and returns every mesh instance with its world matrix.
func placeMeshes(doc *gltf.Document) ([]placement, error) {
	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	}

	var out []placement
	var walk func(idx int, parent math3d.Mat4, depth int) error
	walk = func(idx int, parent math3d.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cycle in node hierarchy", idx)
		}
		n := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(n))
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
				return fmt.Errorf("node %d: mesh %d out of range", idx, *n.Mesh)
			}
			out = append(out, placement{mesh: *n.Mesh, name: n.Name, world: world})
		}
		for _, c := range n.Children {
			if err := walk(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// nodeMatrix returns the local transform of n: its matrix when one is set,
// otherwise translation * rotation * scale.
func nodeMatrix(n *gltf.Node) math3d.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return math3d.Mat4(m)
	}
	return math3d.Translate(math3d.FromArray(n.TranslationOrDefault())).
		Mul(math3d.Rotate(n.RotationOrDefault())).
		Mul(math3d.Scale(math3d.FromArray(n.ScaleOrDefault())))
}

// readExtras decodes the optional material spec. Extras arrive either as
// raw JSON or as already decoded maps, so they are round-tripped through
// encoding/json.
func readExtras(raw any, mesh *Mesh) error {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var ex extras
	if err := json.Unmarshal(data, &ex); err != nil {
		// Extras that are not an object carry no material.
		return nil
	}
	if len(ex.Material) == 0 {
		return nil
	}
	return json.Unmarshal(ex.Material, &mesh.Material)
}

// processMesh extracts triangles from a glTF mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		baseVertex := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, positions...)

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				face := [3]int{baseVertex + indices[i], baseVertex + indices[i+1], baseVertex + indices[i+2]}
				for _, v := range face {
					if v >= len(mesh.Vertices) {
						return fmt.Errorf("index %d out of range (%d vertices)", v, len(mesh.Vertices))
					}
				}
				mesh.Faces = append(mesh.Faces, face)
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, [3]int{baseVertex + i, baseVertex + i + 1, baseVertex + i + 2})
			}
		}
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	buf, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		offset := start + i*stride
		if offset+12 > len(buf) {
			return nil, fmt.Errorf("accessor overruns buffer")
		}
		result[i] = math3d.V3(
			float64(readFloat32(buf[offset:])),
			float64(readFloat32(buf[offset+4:])),
			float64(readFloat32(buf[offset+8:])),
		)
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	buf, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		offset := start + i*stride
		if offset+size > len(buf) {
			return nil, fmt.Errorf("accessor overruns buffer")
		}
		switch size {
		case 1:
			result[i] = int(buf[offset])
		case 2:
			result[i] = int(uint16(buf[offset]) | uint16(buf[offset+1])<<8)
		case 4:
			result[i] = int(uint32(buf[offset]) |
				uint32(buf[offset+1])<<8 |
				uint32(buf[offset+2])<<16 |
				uint32(buf[offset+3])<<24)
		}
	}
	return result, nil
}

// accessorBytes resolves the buffer, first byte and stride of an accessor.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %q has no data", buffer.URI)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
