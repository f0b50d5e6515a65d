package engine

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"refraction/internal/logger"
	"refraction/pkg/assets"
	"refraction/pkg/material"
	"refraction/pkg/scene"
)

// vertex layout shared by every mesh: position, normal, uv
const (
	vertexStride   = 8 * 4
	normalOffset   = 3 * 4
	texCoordOffset = 6 * 4
)

// imageTexture is a texture uploaded from decoded pixels
type imageTexture uint32

func (t imageTexture) Handle() uint32 { return uint32(t) }

// glMesh is a mesh resident on the GPU
type glMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// OpenGLRenderer implements Backend on an OpenGL 4.1 core context
type OpenGLRenderer struct {
	logger *logger.Logger

	width, height int
	dpr           float64
	screenSize    func() (int, int)

	programs map[*material.Program]*shaderProgram
	failed   map[*material.Program]bool
	meshes   map[*assets.Mesh]*glMesh
	textures []uint32
	targets  []*Framebuffer
}

// NewOpenGLRenderer loads GL function pointers for the current context.
// screenSize reports the default framebuffer in device pixels and may be nil.
func NewOpenGLRenderer(log *logger.Logger, screenSize func() (int, int)) (*OpenGLRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL %s, GLSL %s",
		gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.ClearDepth(1.0)

	return &OpenGLRenderer{
		logger:     log,
		dpr:        1,
		screenSize: screenSize,
		programs:   make(map[*material.Program]*shaderProgram),
		failed:     make(map[*material.Program]bool),
		meshes:     make(map[*assets.Mesh]*glMesh),
	}, nil
}

func (r *OpenGLRenderer) SetSize(width, height int, dpr float64) {
	r.width = width
	r.height = height
	r.dpr = dpr
}

func (r *OpenGLRenderer) NewTarget(width, height int) (Target, error) {
	fb, err := newFramebuffer(width, height)
	if err != nil {
		return nil, err
	}
	r.targets = append(r.targets, fb)
	return fb, nil
}

func (r *OpenGLRenderer) UploadTexture(img *assets.Image) (material.Texture, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Pix) < img.Width*img.Height*4 {
		return nil, fmt.Errorf("invalid image for upload")
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Width),
		int32(img.Height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.textures = append(r.textures, id)
	return imageTexture(id), nil
}

func (r *OpenGLRenderer) SetRenderTarget(t Target) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		w, h := r.screenDimensions()
		gl.Viewport(0, 0, int32(w), int32(h))
		return
	}

	fb, ok := t.(*Framebuffer)
	if !ok {
		r.logger.Errorf("Render target %T does not belong to this renderer", t)
		return
	}
	fb.bind()
}

// screenDimensions prefers the real drawable size over logical size * dpr
func (r *OpenGLRenderer) screenDimensions() (int, int) {
	if r.screenSize != nil {
		if w, h := r.screenSize(); w > 0 && h > 0 {
			return w, h
		}
	}
	return int(float64(r.width) * r.dpr), int(float64(r.height) * r.dpr)
}

func (r *OpenGLRenderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *OpenGLRenderer) ClearDepth() {
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (r *OpenGLRenderer) Render(s *scene.Scene, cam scene.Camera) {
	for _, n := range s.Nodes() {
		if !cam.Layers().Test(n.Layers) || n.Mesh == nil || n.Material == nil {
			continue
		}
		r.draw(n, cam)
	}
}

func (r *OpenGLRenderer) draw(n *scene.Node, cam scene.Camera) {
	prog := r.program(n.Material.Program)
	if prog == nil {
		return
	}
	mesh := r.mesh(n.Mesh)

	gl.UseProgram(prog.id)

	model := n.Matrix()
	modelView := cam.View().Mul4(model)
	prog.setMat4("modelMatrix", model)
	prog.setMat4("modelViewMatrix", modelView)
	prog.setMat4("projectionMatrix", cam.Projection())
	prog.setVec3("cameraPosition", cam.Position())

	unit := int32(0)
	for _, name := range n.Material.Program.Uniforms {
		switch v := n.Material.Uniforms[name].(type) {
		case material.Texture:
			gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
			gl.BindTexture(gl.TEXTURE_2D, v.Handle())
			prog.setSampler(name, unit)
			unit++
		case mgl32.Vec2:
			prog.setVec2(name, v)
		}
	}

	switch n.Material.Side {
	case material.FrontSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case material.BackSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}

	gl.BindVertexArray(mesh.vao)
	gl.DrawElements(gl.TRIANGLES, mesh.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	for i := int32(0); i < unit; i++ {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

// program compiles p on first use. A program that fails to build is
// reported once and its nodes are skipped afterwards.
func (r *OpenGLRenderer) program(p *material.Program) *shaderProgram {
	if prog, ok := r.programs[p]; ok {
		return prog
	}
	if r.failed[p] {
		return nil
	}

	prog, err := newShaderProgram(p.Vertex, p.Fragment)
	if err != nil {
		r.logger.Errorf("Program %s: %v", p.Name, err)
		r.failed[p] = true
		return nil
	}
	r.logger.Debugf("Compiled program %s", p.Name)
	r.programs[p] = prog
	return prog
}

// mesh uploads m on first use
func (r *OpenGLRenderer) mesh(m *assets.Mesh) *glMesh {
	if gm, ok := r.meshes[m]; ok {
		return gm
	}

	vertices := m.Interleave()
	gm := &glMesh{count: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &gm.vao)
	gl.GenBuffers(1, &gm.vbo)
	gl.GenBuffers(1, &gm.ebo)

	gl.BindVertexArray(gm.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	// Position attribute
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	// Normal attribute
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(normalOffset))
	gl.EnableVertexAttribArray(1)
	// Texture coord attribute
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(texCoordOffset))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.meshes[m] = gm
	return gm
}

// Close releases all OpenGL resources
func (r *OpenGLRenderer) Close() {
	for _, gm := range r.meshes {
		gl.DeleteVertexArrays(1, &gm.vao)
		gl.DeleteBuffers(1, &gm.vbo)
		gl.DeleteBuffers(1, &gm.ebo)
	}
	for _, p := range r.programs {
		p.delete()
	}
	for _, fb := range r.targets {
		fb.Delete()
	}
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
	}

	r.meshes = make(map[*assets.Mesh]*glMesh)
	r.programs = make(map[*material.Program]*shaderProgram)
	r.targets = nil
	r.textures = nil
}
