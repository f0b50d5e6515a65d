package engine

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer is an offscreen color texture with a depth renderbuffer
type Framebuffer struct {
	fbo     uint32
	texture uint32
	rbo     uint32
	width   int
	height  int
}

// newFramebuffer allocates a complete framebuffer of the given size
func newFramebuffer(width, height int) (*Framebuffer, error) {
	f := &Framebuffer{width: width, height: height}

	gl.GenFramebuffers(1, &f.fbo)
	gl.GenTextures(1, &f.texture)
	gl.GenRenderbuffers(1, &f.rbo)

	f.allocate()

	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, f.texture, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, f.rbo)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		f.Delete()
		return nil, fmt.Errorf("framebuffer not complete: 0x%x", status)
	}

	return f, nil
}

// allocate (re)creates texture and depth storage at the current size
func (f *Framebuffer) allocate() {
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(f.width), int32(f.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, f.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(f.width), int32(f.height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

// SetSize resizes the storage in place; the texture handle does not change.
// The new contents are undefined.
func (f *Framebuffer) SetSize(width, height int) {
	if f.width == width && f.height == height {
		return
	}
	f.width = width
	f.height = height
	f.allocate()
}

func (f *Framebuffer) Size() (int, int) { return f.width, f.height }

// Handle returns the color texture
func (f *Framebuffer) Handle() uint32 { return f.texture }

func (f *Framebuffer) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.Viewport(0, 0, int32(f.width), int32(f.height))
}

// Delete releases the GL objects
func (f *Framebuffer) Delete() {
	gl.DeleteRenderbuffers(1, &f.rbo)
	gl.DeleteTextures(1, &f.texture)
	gl.DeleteFramebuffers(1, &f.fbo)
}
