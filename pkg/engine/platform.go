package engine

import (
	"refraction/pkg/scene"
)

// PointerSource selects which event stream drives the spin
type PointerSource int

const (
	MouseInput PointerSource = iota
	TouchInput
)

func (s PointerSource) String() string {
	if s == TouchInput {
		return "touch"
	}
	return "mouse"
}

// PointerHandlers receive horizontal pointer coordinates in logical pixels
type PointerHandlers struct {
	Down func(x float64)
	Move func(x float64)
	Up   func()
}

// Platform is the host surface: viewport queries, event subscription and
// the present/poll cycle.
type Platform interface {
	Viewport() scene.Viewport
	SupportsTouch() bool
	OnResize(fn func())
	BindPointer(source PointerSource, h PointerHandlers) error
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
}
