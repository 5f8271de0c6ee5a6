package scene

import (
	"farmscene/core"
	"farmscene/math"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	Material *Material
}

// NewMesh builds a Mesh with the default material.
func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Material: DefaultMaterial(),
	}
}

func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Transform bakes m into the vertex positions and normals.
func (m *Mesh) Transform(mat math.Mat4) {
	normalMat := mat.WithoutTranslation()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		v.Normal = normalMat.MulVec3(v.Normal).Normalize()
	}
}

// CreateBillboardQuad is a unit quad standing on its left edge at the
// origin, facing +Z. The top edge samples the first texture row.
func CreateBillboardQuad() *Mesh {
	n := math.Vec3{X: 0, Y: 0, Z: 1}
	vertices := []core.Vertex{
		{Position: math.Vec3{X: 0, Y: 0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 0, Y: 0}},
		{Position: math.Vec3{X: 0, Y: -0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 0, Y: 1}},
		{Position: math.Vec3{X: 1, Y: -0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{X: 1, Y: 0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 1, Y: 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return NewMesh("billboard", vertices, indices)
}

// CreateSkyboxCube returns the 36 positions of a unit cube seen from inside.
func CreateSkyboxCube() []float32 {
	return []float32{
		-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
		1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
		-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
		-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
		-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
	}
}
