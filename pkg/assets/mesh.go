package assets

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is indexed triangle geometry ready for upload. Normals and UVs are
// either empty or the same length as Positions.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// VertexCount returns the number of unique vertices
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Interleave packs position, normal and uv into one float slice with a
// stride of 8. Missing normals or uvs are written as zero.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Positions)*8)
	for i, p := range m.Positions {
		var n [3]float32
		var uv [2]float32
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		if i < len(m.UVs) {
			uv = m.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// ComputeNormals replaces Normals with area-weighted vertex normals
func (m *Mesh) ComputeNormals() {
	acc := make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa := mgl32.Vec3(m.Positions[a])
		pb := mgl32.Vec3(m.Positions[b])
		pc := mgl32.Vec3(m.Positions[c])

		// unnormalized cross product weights by face area
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}

	m.Normals = make([][3]float32, len(acc))
	for i, n := range acc {
		if n.Len() > 0 {
			n = n.Normalize()
		}
		m.Normals[i] = [3]float32(n)
	}
}

// Plane returns a unit quad in the XY plane facing +Z, centered on the origin
func Plane() *Mesh {
	return &Mesh{
		Positions: [][3]float32{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		},
		Normals: [][3]float32{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		UVs: [][2]float32{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
