package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera supplies the matrices for one render pass and the layers it sees
type Camera interface {
	Projection() mgl32.Mat4
	View() mgl32.Mat4
	Position() mgl32.Vec3
	Layers() LayerMask
}

// PerspectiveCamera is the depth-correct camera for the model layer
type PerspectiveCamera struct {
	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
	Pos    mgl32.Vec3
	Mask   LayerMask

	projection mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Mask:   Layer(LayerModel),
	}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix must be called after changing Fov, Aspect, Near or Far
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) Projection() mgl32.Mat4 { return c.projection }
func (c *PerspectiveCamera) View() mgl32.Mat4       { return viewFrom(c.Pos) }
func (c *PerspectiveCamera) Position() mgl32.Vec3   { return c.Pos }
func (c *PerspectiveCamera) Layers() LayerMask      { return c.Mask }

// OrthographicCamera maps one world unit to one pixel for the background layer
type OrthographicCamera struct {
	Left, Right float32
	Top, Bottom float32
	Near, Far   float32
	Pos         mgl32.Vec3
	Mask        LayerMask

	projection mgl32.Mat4
}

func NewOrthographicCamera(left, right, top, bottom, near, far float32) *OrthographicCamera {
	c := &OrthographicCamera{
		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
		Near:   near,
		Far:    far,
		Mask:   Layer(LayerBackground),
	}
	c.UpdateProjectionMatrix()
	return c
}

// SetPixelBounds centers the frustum on the origin, width by height pixels
func (c *OrthographicCamera) SetPixelBounds(width, height int) {
	w, h := float32(width), float32(height)
	c.Left = w / -2
	c.Right = w / 2
	c.Top = h / 2
	c.Bottom = h / -2
}

// UpdateProjectionMatrix must be called after changing the bounds
func (c *OrthographicCamera) UpdateProjectionMatrix() {
	c.projection = mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
}

func (c *OrthographicCamera) Projection() mgl32.Mat4 { return c.projection }
func (c *OrthographicCamera) View() mgl32.Mat4       { return viewFrom(c.Pos) }
func (c *OrthographicCamera) Position() mgl32.Vec3   { return c.Pos }
func (c *OrthographicCamera) Layers() LayerMask      { return c.Mask }

// both cameras look down -Z without rotation
func viewFrom(pos mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(-pos.X(), -pos.Y(), -pos.Z())
}
