package engine

import (
	"context"
	"errors"
	"fmt"

	"refraction/internal/logger"
	"refraction/pkg/assets"
	"refraction/pkg/config"
	"refraction/pkg/material"
	"refraction/pkg/scene"
)

// AssetLoader fetches the background texture and model together
type AssetLoader interface {
	LoadAll(ctx context.Context, texture, model string) (*assets.Bundle, error)
}

// Engine owns the scene state and drives the frame loop
type Engine struct {
	config   *config.Config
	logger   *logger.Logger
	platform Platform
	backend  Backend

	state    *scene.State
	pipeline *Pipeline

	envTarget      Target
	backfaceTarget Target

	backfaceMaterial   *material.Material
	refractionMaterial *material.Material

	ready  bool
	frames uint64
}

// NewEngine creates an engine. Nothing is allocated until Setup.
func NewEngine(cfg *config.Config, log *logger.Logger, platform Platform, backend Backend) *Engine {
	return &Engine{
		config:   cfg,
		logger:   log,
		platform: platform,
		backend:  backend,
	}
}

// Setup builds every long-lived object. It returns only after both assets
// are loaded, and registers resize and pointer handlers exactly once.
func (e *Engine) Setup(ctx context.Context, loader AssetLoader) error {
	if e.ready {
		return errors.New("engine already set up")
	}

	vp := e.platform.Viewport()
	e.logger.Infof("Viewport %dx%d at pixel ratio %.2f", vp.Width, vp.Height, vp.DPR)

	e.state = scene.NewState(e.config, vp)
	e.backend.SetSize(vp.Width, vp.Height, vp.DPR)

	w, h := vp.Scaled()
	var err error
	if e.envTarget, err = e.backend.NewTarget(w, h); err != nil {
		return fmt.Errorf("failed to create environment target: %w", err)
	}
	if e.backfaceTarget, err = e.backend.NewTarget(w, h); err != nil {
		return fmt.Errorf("failed to create backface target: %w", err)
	}
	e.clearTargets()

	bundle, err := loader.LoadAll(ctx, e.config.Assets.Texture, e.config.Assets.Model)
	if err != nil {
		return err
	}
	e.logger.Debugf("Loaded %dx%d background and model %q (%d vertices)",
		bundle.Background.Width, bundle.Background.Height, bundle.Model.Name, bundle.Model.Mesh.VertexCount())

	bgTexture, err := e.backend.UploadTexture(bundle.Background)
	if err != nil {
		return fmt.Errorf("failed to upload background texture: %w", err)
	}

	e.backfaceMaterial = material.NewBackface()
	e.refractionMaterial = material.NewRefraction(e.envTarget, e.backfaceTarget, w, h)
	bgMaterial := material.NewBasic(bgTexture)
	for _, m := range []*material.Material{e.backfaceMaterial, e.refractionMaterial, bgMaterial} {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	quad := scene.NewNode("background", assets.Plane(), bgMaterial)
	quad.Layers = scene.Layer(scene.LayerBackground)
	quad.Scale = scene.BackgroundScale(vp)

	e.state.Scene.Background = quad
	e.state.Scene.Model = scene.NewModelNode(bundle.Model, e.refractionMaterial)

	e.pipeline = NewPipeline(e.backend, e.envTarget, e.backfaceTarget, e.backfaceMaterial, e.refractionMaterial)

	e.platform.OnResize(e.Resize)
	if err := e.bindInput(); err != nil {
		return err
	}

	e.ready = true
	return nil
}

// bindInput picks touch or mouse once, based on what the platform reports now
func (e *Engine) bindInput() error {
	source := MouseInput
	if e.platform.SupportsTouch() {
		source = TouchInput
	}
	e.logger.Debugf("Binding %s input", source)

	return e.platform.BindPointer(source, PointerHandlers{
		Down: e.state.Motion.Press,
		Move: e.state.Motion.Move,
		Up:   e.state.Motion.Release,
	})
}

// Resize refits the screen, both targets, the refraction resolution and
// both cameras to the platform's current viewport.
func (e *Engine) Resize() {
	vp := e.platform.Viewport()
	w, h := vp.Scaled()

	e.backend.SetSize(vp.Width, vp.Height, vp.DPR)
	e.envTarget.SetSize(w, h)
	e.backfaceTarget.SetSize(w, h)
	e.clearTargets()
	e.refractionMaterial.SetResolution(w, h)
	e.state.Resize(vp)

	e.logger.Debugf("Resized to %dx%d (%dx%d device pixels)", vp.Width, vp.Height, w, h)
}

// clearTargets gives freshly allocated targets defined color and depth. The
// environment target is never cleared per frame, so without this its depth
// could reject the background entirely.
func (e *Engine) clearTargets() {
	for _, t := range []Target{e.envTarget, e.backfaceTarget} {
		e.backend.SetRenderTarget(t)
		e.backend.Clear()
	}
	e.backend.SetRenderTarget(nil)
}

// Frame renders one frame
func (e *Engine) Frame() {
	e.pipeline.Frame(e.state)
	e.frames++
}

// Run renders until the window closes or ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	if !e.ready {
		return errors.New("engine not set up")
	}

	for !e.platform.ShouldClose() {
		if ctx.Err() != nil {
			e.logger.Info("Interrupted, leaving render loop")
			break
		}

		e.Frame()

		e.platform.SwapBuffers()
		e.platform.PollEvents()
	}

	e.logger.Infof("Rendered %d frames", e.frames)
	return nil
}

// State exposes the mutable scene state
func (e *Engine) State() *scene.State {
	return e.state
}

// Frames returns the number of frames rendered so far
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Close releases GPU resources
func (e *Engine) Close() {
	e.logger.Info("Shutting down engine...")
	e.backend.Close()
}
