package material

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture uint32

func (t fakeTexture) Handle() uint32 { return uint32(t) }

func TestNewRefraction_BindsThreeInputs(t *testing.T) {
	m := NewRefraction(fakeTexture(3), fakeTexture(4), 1600, 1200)

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if env, ok := m.Texture(EnvMap); !ok || env.Handle() != 3 {
		t.Errorf("envMap = %v", env)
	}
	if back, ok := m.Texture(BackfaceMap); !ok || back.Handle() != 4 {
		t.Errorf("backfaceMap = %v", back)
	}
	if r := m.Resolution(); r != (mgl32.Vec2{1600, 1200}) {
		t.Errorf("resolution = %v", r)
	}
	if m.Side != FrontSide {
		t.Errorf("side = %v, want FrontSide", m.Side)
	}
}

func TestSetResolution(t *testing.T) {
	m := NewRefraction(fakeTexture(1), fakeTexture(2), 10, 10)
	m.SetResolution(640, 480)
	if r := m.Resolution(); r != (mgl32.Vec2{640, 480}) {
		t.Errorf("resolution = %v, want [640 480]", r)
	}

	// materials without a resolution slot are left alone
	b := NewBackface()
	b.SetResolution(640, 480)
	if _, ok := b.Uniforms[Resolution]; ok {
		t.Error("backface material gained a resolution input")
	}
}

func TestNewBackface(t *testing.T) {
	m := NewBackface()
	if m.Side != BackSide {
		t.Errorf("side = %v, want BackSide", m.Side)
	}
	if len(m.Program.Uniforms) != 0 {
		t.Errorf("backface program should take no inputs, has %v", m.Program.Uniforms)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    *Material
		err  string
	}{
		{"basic ok", NewBasic(fakeTexture(9)), ""},
		{"unbound texture", NewBasic(nil), "not bound"},
		{"wrong type", &Material{
			Program:  RefractionProgram,
			Uniforms: map[string]interface{}{EnvMap: fakeTexture(1), BackfaceMap: fakeTexture(2), Resolution: 5},
		}, "unsupported type"},
		{"no program", &Material{}, "no program"},
	}

	for _, tc := range tests {
		err := tc.m.Validate()
		if tc.err == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.err) {
			t.Errorf("%s: err = %v, want %q", tc.name, err, tc.err)
		}
	}
}

func TestProgramsDeclareTheirSamplers(t *testing.T) {
	for _, p := range []*Program{BackfaceProgram, RefractionProgram, BasicProgram} {
		for _, name := range p.Uniforms {
			if !strings.Contains(p.Fragment, name) {
				t.Errorf("%s: fragment shader does not declare %q", p.Name, name)
			}
		}
		if !strings.HasPrefix(strings.TrimSpace(p.Vertex), "#version 410 core") {
			t.Errorf("%s: vertex shader must target GLSL 410 core", p.Name)
		}
	}
}
