package engine

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"refraction/internal/logger"
	"refraction/pkg/config"
	"refraction/pkg/scene"
)

// ErrTouchUnsupported is returned when binding touch input on a host without it
var ErrTouchUnsupported = errors.New("touch input is not supported")

// Window is a GLFW window with a current OpenGL 4.1 core context
type Window struct {
	window        *glfw.Window
	logger        *logger.Logger
	maxPixelRatio float64
}

// NewWindow initializes GLFW and opens the window. Must run on the main thread.
func NewWindow(cfg config.WindowConfig, log *logger.Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}

	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		window:        window,
		logger:        log,
		maxPixelRatio: cfg.MaxPixelRatio,
	}

	window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})

	return w, nil
}

// Viewport reports the window size and the ratio of framebuffer to window
// pixels. Some platforms already report the window size in pixels, so the
// content scale is not used.
func (w *Window) Viewport() scene.Viewport {
	width, height := w.window.GetSize()
	fbWidth, _ := w.window.GetFramebufferSize()

	return scene.Viewport{
		Width:  width,
		Height: height,
		DPR:    scene.PixelRatio(width, fbWidth, w.maxPixelRatio),
	}
}

// SupportsTouch is always false: GLFW delivers no touch events
func (w *Window) SupportsTouch() bool {
	return false
}

// OnResize calls fn after the window or its framebuffer changes size
func (w *Window) OnResize(fn func()) {
	w.window.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			// minimized
			return
		}
		fn()
	})
	// moving to a monitor with another scale changes only the framebuffer
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return
		}
		fn()
	})
}

// BindPointer routes mouse buttons and cursor motion to h
func (w *Window) BindPointer(source PointerSource, h PointerHandlers) error {
	if source == TouchInput {
		return ErrTouchUnsupported
	}

	w.window.SetMouseButtonCallback(func(win *glfw.Window, _ glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			x, _ := win.GetCursorPos()
			h.Down(x)
		case glfw.Release:
			h.Up()
		}
	})
	w.window.SetCursorPosCallback(func(_ *glfw.Window, x, _ float64) {
		h.Move(x)
	})

	return nil
}

func (w *Window) ShouldClose() bool { return w.window.ShouldClose() }
func (w *Window) SwapBuffers()      { w.window.SwapBuffers() }
func (w *Window) PollEvents()       { glfw.PollEvents() }

// FramebufferSize returns the drawable size in device pixels
func (w *Window) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// Close destroys the window and terminates GLFW
func (w *Window) Close() {
	w.window.Destroy()
	glfw.Terminate()
}
