package engine

import (
	"context"
	"fmt"

	"refraction/pkg/assets"
	"refraction/pkg/material"
	"refraction/pkg/scene"
)

type fakeTarget struct {
	name          string
	handle        uint32
	width, height int
}

func (t *fakeTarget) Handle() uint32   { return t.handle }
func (t *fakeTarget) Size() (int, int) { return t.width, t.height }
func (t *fakeTarget) SetSize(w, h int) { t.width, t.height = w, h }
func (t *fakeTarget) String() string   { return t.name }

// recordingBackend logs every call as a short string
type recordingBackend struct {
	ops     []string
	targets []*fakeTarget
	current *fakeTarget

	width, height int
	dpr           float64

	// textures sampled per draw, keyed by op index
	sampled map[int][]uint32
	closed  bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{sampled: make(map[int][]uint32)}
}

func (b *recordingBackend) where() string {
	if b.current == nil {
		return "screen"
	}
	return b.current.name
}

func (b *recordingBackend) SetSize(w, h int, dpr float64) {
	b.width, b.height, b.dpr = w, h, dpr
}

func (b *recordingBackend) NewTarget(w, h int) (Target, error) {
	names := []string{"env", "backface"}
	t := &fakeTarget{
		name:   names[len(b.targets)%len(names)],
		handle: uint32(100 + len(b.targets)),
		width:  w,
		height: h,
	}
	b.targets = append(b.targets, t)
	return t, nil
}

func (b *recordingBackend) UploadTexture(img *assets.Image) (material.Texture, error) {
	return imageTexture(7), nil
}

func (b *recordingBackend) SetRenderTarget(t Target) {
	if t == nil {
		b.current = nil
	} else {
		b.current = t.(*fakeTarget)
	}
	b.ops = append(b.ops, "bind "+b.where())
}

func (b *recordingBackend) Clear() {
	b.ops = append(b.ops, "clear "+b.where())
}

func (b *recordingBackend) ClearDepth() {
	b.ops = append(b.ops, "clearDepth "+b.where())
}

func (b *recordingBackend) Render(s *scene.Scene, cam scene.Camera) {
	for _, n := range s.Nodes() {
		if !cam.Layers().Test(n.Layers) {
			continue
		}
		var handles []uint32
		for _, name := range n.Material.Program.Uniforms {
			if tex, ok := n.Material.Texture(name); ok {
				handles = append(handles, tex.Handle())
			}
		}
		b.sampled[len(b.ops)] = handles
		b.ops = append(b.ops, fmt.Sprintf("draw %s %s -> %s", n.Name, n.Material.Program.Name, b.where()))
	}
}

func (b *recordingBackend) Close() { b.closed = true }

// fakePlatform lets tests drive resize and pointer events by hand
type fakePlatform struct {
	viewport scene.Viewport
	touch    bool

	resize   []func()
	pointers []PointerSource
	handlers PointerHandlers

	closeAfter int
	polls      int
	swaps      int
}

func (p *fakePlatform) Viewport() scene.Viewport { return p.viewport }
func (p *fakePlatform) SupportsTouch() bool      { return p.touch }
func (p *fakePlatform) OnResize(fn func())       { p.resize = append(p.resize, fn) }

func (p *fakePlatform) BindPointer(source PointerSource, h PointerHandlers) error {
	p.pointers = append(p.pointers, source)
	p.handlers = h
	return nil
}

func (p *fakePlatform) ShouldClose() bool { return p.polls >= p.closeAfter }
func (p *fakePlatform) SwapBuffers()      { p.swaps++ }
func (p *fakePlatform) PollEvents()       { p.polls++ }

func (p *fakePlatform) fireResize(vp scene.Viewport) {
	p.viewport = vp
	for _, fn := range p.resize {
		fn()
	}
}

// stubLoader returns a fixed bundle or error
type stubLoader struct {
	bundle *assets.Bundle
	err    error
	calls  int
}

func (l *stubLoader) LoadAll(ctx context.Context, texture, model string) (*assets.Bundle, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.bundle, nil
}

func testBundle() *assets.Bundle {
	mesh := &assets.Mesh{
		Positions: [][3]float32{{0, 1, 0}, {-1, -1, 0}, {1, -1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	mesh.ComputeNormals()
	return &assets.Bundle{
		Background: &assets.Image{Width: 2, Height: 1, Pix: make([]uint8, 8)},
		Model: &assets.Model{
			Name:     "diamond",
			Mesh:     mesh,
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		},
	}
}
