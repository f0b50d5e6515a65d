package material

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Side selects which triangle faces a material rasterizes
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Uniform slot names
const (
	EnvMap      = "envMap"
	BackfaceMap = "backfaceMap"
	Resolution  = "resolution"
	Map         = "map"
)

// Texture is a GPU texture usable as a sampler input
type Texture interface {
	Handle() uint32
}

// Program describes a shader pair and the inputs it expects to be bound.
// Transform uniforms are supplied by the renderer and not listed.
type Program struct {
	Name     string
	Vertex   string
	Fragment string
	Uniforms []string
}

// Programs shared by every material built from this package
var (
	BackfaceProgram = &Program{
		Name:     "backface",
		Vertex:   refractVertexShaderSource,
		Fragment: backfaceFragmentShaderSource,
	}

	RefractionProgram = &Program{
		Name:     "refraction",
		Vertex:   refractVertexShaderSource,
		Fragment: refractionFragmentShaderSource,
		Uniforms: []string{EnvMap, BackfaceMap, Resolution},
	}

	BasicProgram = &Program{
		Name:     "basic",
		Vertex:   basicVertexShaderSource,
		Fragment: basicFragmentShaderSource,
		Uniforms: []string{Map},
	}
)

// Material is a program plus the values bound to its inputs. Values are
// either a Texture or an mgl32.Vec2.
type Material struct {
	Program  *Program
	Side     Side
	Uniforms map[string]interface{}
}

// NewBackface creates the material that draws only back faces, untextured
func NewBackface() *Material {
	return &Material{
		Program:  BackfaceProgram,
		Side:     BackSide,
		Uniforms: map[string]interface{}{},
	}
}

// NewRefraction binds the captured environment and backface textures and
// the capture resolution in device pixels.
func NewRefraction(env, backface Texture, width, height int) *Material {
	return &Material{
		Program: RefractionProgram,
		Side:    FrontSide,
		Uniforms: map[string]interface{}{
			EnvMap:      env,
			BackfaceMap: backface,
			Resolution:  mgl32.Vec2{float32(width), float32(height)},
		},
	}
}

// NewBasic creates an unlit material sampling tex
func NewBasic(tex Texture) *Material {
	return &Material{
		Program:  BasicProgram,
		Side:     FrontSide,
		Uniforms: map[string]interface{}{Map: tex},
	}
}

// SetResolution updates the resolution input if the program has one
func (m *Material) SetResolution(width, height int) {
	if _, ok := m.Uniforms[Resolution]; !ok {
		return
	}
	m.Uniforms[Resolution] = mgl32.Vec2{float32(width), float32(height)}
}

// Resolution returns the bound resolution, or zero when there is none
func (m *Material) Resolution() mgl32.Vec2 {
	v, _ := m.Uniforms[Resolution].(mgl32.Vec2)
	return v
}

// Texture returns the texture bound to name
func (m *Material) Texture(name string) (Texture, bool) {
	t, ok := m.Uniforms[name].(Texture)
	return t, ok && t != nil
}

// Validate checks that every declared input is bound to a supported value
func (m *Material) Validate() error {
	if m.Program == nil {
		return fmt.Errorf("material has no program")
	}
	for _, name := range m.Program.Uniforms {
		v, ok := m.Uniforms[name]
		if !ok || v == nil {
			return fmt.Errorf("%s: input %q is not bound", m.Program.Name, name)
		}
		switch v.(type) {
		case Texture, mgl32.Vec2:
		default:
			return fmt.Errorf("%s: input %q has unsupported type %T", m.Program.Name, name, v)
		}
	}
	return nil
}
