package engine

import (
	"refraction/pkg/material"
	"refraction/pkg/scene"
)

// Pipeline draws one composited frame in four passes. The order is fixed:
// the environment and backface targets are written before the refraction
// pass samples them.
type Pipeline struct {
	backend Backend

	env      Target
	backface Target

	backfaceMaterial   *material.Material
	refractionMaterial *material.Material
}

func NewPipeline(b Backend, env, backface Target, backfaceMat, refractionMat *material.Material) *Pipeline {
	return &Pipeline{
		backend:            b,
		env:                env,
		backface:           backface,
		backfaceMaterial:   backfaceMat,
		refractionMaterial: refractionMat,
	}
}

// Frame advances the spin by one step and renders st
func (p *Pipeline) Frame(st *scene.State) {
	b := p.backend
	model := st.Scene.Model

	b.SetRenderTarget(nil)
	b.Clear()

	st.Advance()

	// environment: background only, seen by the ortho camera
	b.SetRenderTarget(p.env)
	b.Render(st.Scene, st.Ortho)

	// back faces of the model into their own target
	model.Material = p.backfaceMaterial
	b.SetRenderTarget(p.backface)
	b.ClearDepth()
	b.Render(st.Scene, st.Camera)

	// background to screen
	b.SetRenderTarget(nil)
	b.Render(st.Scene, st.Ortho)
	b.ClearDepth()

	// refractive model on top
	model.Material = p.refractionMaterial
	b.Render(st.Scene, st.Camera)
}
