package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"refraction/pkg/assets"
	"refraction/pkg/material"
)

// LayerMask is a bit set of render layers
type LayerMask uint32

// Render layers
const (
	LayerModel      = 0
	LayerBackground = 1
)

// Layer returns the mask containing only layer n
func Layer(n int) LayerMask {
	return 1 << uint(n)
}

// Test reports whether the masks share a layer
func (m LayerMask) Test(other LayerMask) bool {
	return m&other != 0
}

// Node is a drawable mesh with a transform and exactly one material
type Node struct {
	Name     string
	Layers   LayerMask
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // euler angles, XYZ order, radians
	Scale    mgl32.Vec3
	Mesh     *assets.Mesh
	Material *material.Material
}

func NewNode(name string, mesh *assets.Mesh, mat *material.Material) *Node {
	return &Node{
		Name:     name,
		Layers:   Layer(LayerModel),
		Scale:    mgl32.Vec3{1, 1, 1},
		Mesh:     mesh,
		Material: mat,
	}
}

// NewModelNode places the asset's mesh with the transform it was authored with.
// The rest orientation becomes euler angles, so spinning adds to its Y angle.
func NewModelNode(m *assets.Model, mat *material.Material) *Node {
	n := NewNode(m.Name, m.Mesh, mat)
	n.Position = mgl32.Vec3(m.Translation)
	n.Rotation = EulerXYZ(mgl32.Quat{
		W: m.Rotation[3],
		V: mgl32.Vec3{m.Rotation[0], m.Rotation[1], m.Rotation[2]},
	}.Normalize())
	n.Scale = mgl32.Vec3(m.Scale)
	return n
}

// EulerXYZ decomposes q into XYZ-order angles, the inverse of
// mgl32.AnglesToQuat(x, y, z, mgl32.XYZ). Near gimbal lock z is zero.
func EulerXYZ(q mgl32.Quat) mgl32.Vec3 {
	m := q.Mat4()
	m13 := float64(mgl32.Clamp(m.At(0, 2), -1, 1))

	y := math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		x := math.Atan2(-float64(m.At(1, 2)), float64(m.At(2, 2)))
		z := math.Atan2(-float64(m.At(0, 1)), float64(m.At(0, 0)))
		return mgl32.Vec3{float32(x), float32(y), float32(z)}
	}
	x := math.Atan2(float64(m.At(2, 1)), float64(m.At(1, 1)))
	return mgl32.Vec3{float32(x), float32(y), 0}
}

// Matrix returns translation * rotation * scale
func (n *Node) Matrix() mgl32.Mat4 {
	rot := mgl32.AnglesToQuat(n.Rotation.X(), n.Rotation.Y(), n.Rotation.Z(), mgl32.XYZ)
	return mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}

// Scene owns the background quad and the single refractive model
type Scene struct {
	Background *Node
	Model      *Node
}

// Nodes returns the populated nodes, background first
func (s *Scene) Nodes() []*Node {
	nodes := make([]*Node, 0, 2)
	if s.Background != nil {
		nodes = append(nodes, s.Background)
	}
	if s.Model != nil {
		nodes = append(nodes, s.Model)
	}
	return nodes
}
