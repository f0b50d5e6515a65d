package engine

import (
	"refraction/pkg/assets"
	"refraction/pkg/material"
	"refraction/pkg/scene"
)

// Target is an offscreen color buffer that can be sampled as a texture.
// SetSize reallocates storage but keeps the texture handle. Fresh storage
// has undefined contents until it is cleared.
type Target interface {
	material.Texture
	Size() (width, height int)
	SetSize(width, height int)
}

// Backend defines the drawing operations the frame pipeline needs
type Backend interface {
	// SetSize sets the logical output size and pixel ratio of the screen
	SetSize(width, height int, dpr float64)

	// NewTarget allocates an offscreen target in device pixels
	NewTarget(width, height int) (Target, error)

	// UploadTexture copies decoded pixels to the GPU
	UploadTexture(img *assets.Image) (material.Texture, error)

	// SetRenderTarget directs subsequent draws; nil selects the screen
	SetRenderTarget(t Target)

	// Clear clears color and depth of the current target
	Clear()

	// ClearDepth clears only depth of the current target
	ClearDepth()

	// Render draws every node of s visible to cam with its current material
	Render(s *scene.Scene, cam scene.Camera)

	// Close releases resources
	Close()
}
