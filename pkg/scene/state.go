package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"refraction/internal/util"
	"refraction/pkg/config"
)

// Viewport is the logical surface size and its device pixel ratio
type Viewport struct {
	Width  int
	Height int
	DPR    float64
}

// Scaled returns the size in device pixels
func (v Viewport) Scaled() (int, int) {
	return int(float64(v.Width) * v.DPR), int(float64(v.Height) * v.DPR)
}

// PixelRatio derives the device pixel ratio from the logical and drawable
// widths of the same surface, capped at limit. An empty surface reports 1.
func PixelRatio(logicalWidth, deviceWidth int, limit float64) float64 {
	if logicalWidth <= 0 || deviceWidth <= 0 {
		return 1
	}
	return util.Clamp(float64(deviceWidth)/float64(logicalWidth), 1, limit)
}

// Aspect returns width over height
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// BackgroundScale sizes the background quad for a viewport. The 2:1 ratio
// assumes the background image is twice as wide as it is tall.
func BackgroundScale(v Viewport) mgl32.Vec3 {
	h := float32(v.Height)
	return mgl32.Vec3{h * 2, h, 1}
}

// State is everything mutated by input, resize and the frame loop
type State struct {
	Viewport Viewport
	Motion   Motion
	Scene    *Scene
	Camera   *PerspectiveCamera
	Ortho    *OrthographicCamera
}

// NewState builds both cameras for vp. The scene starts empty.
func NewState(cfg *config.Config, vp Viewport) *State {
	camera := NewPerspectiveCamera(cfg.Camera.Fov, vp.Aspect(), cfg.Camera.Near, cfg.Camera.Far)
	camera.Pos = mgl32.Vec3{0, 0, cfg.Camera.Distance}

	ortho := NewOrthographicCamera(0, 0, 0, 0, cfg.Camera.OrthoNear, cfg.Camera.OrthoFar)
	ortho.SetPixelBounds(vp.Width, vp.Height)
	ortho.UpdateProjectionMatrix()
	ortho.Pos = mgl32.Vec3{0, 0, cfg.Camera.Distance}

	return &State{
		Viewport: vp,
		Motion:   NewMotion(cfg.Spin),
		Scene:    &Scene{},
		Camera:   camera,
		Ortho:    ortho,
	}
}

// Resize refits both cameras and the background quad to vp
func (s *State) Resize(vp Viewport) {
	s.Viewport = vp

	if s.Scene.Background != nil {
		s.Scene.Background.Scale = BackgroundScale(vp)
	}

	s.Camera.Aspect = vp.Aspect()
	s.Camera.UpdateProjectionMatrix()

	s.Ortho.SetPixelBounds(vp.Width, vp.Height)
	s.Ortho.UpdateProjectionMatrix()
}

// Advance runs one frame of spin and returns the rotation applied
func (s *State) Advance() float64 {
	delta := s.Motion.Step()
	if s.Scene.Model != nil {
		s.Scene.Model.Rotation[1] += float32(delta)
	}
	return delta
}
