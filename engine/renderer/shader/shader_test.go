package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedSource = `
struct Globals {
    transform: mat4x4<f32>,
    tint: vec3<f32>,
    // trailing comment: vec4<f32>
};

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
    @location(2) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
};

@group(0) @binding(1) var t_sampler: sampler;
@group(0) @binding(0) var t_diffuse: texture_2d<f32>;
@group(1) @binding(0) var<uniform> globals: Globals;

/* @vertex fn commented_out() {} */

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = globals.transform * vec4<f32>(in.position, 0.0, 1.0);
    out.color = in.color;
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, t_sampler, in.uv) * in.color;
}
`

func TestNewShaderEntryPoints(t *testing.T) {
	s, err := NewShader("textured", texturedSource)
	require.NoError(t, err)

	assert.Equal(t, "textured", s.Label())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
	assert.Equal(t, texturedSource, s.Source())
}

func TestNewShaderRequiresVertexEntryPoint(t *testing.T) {
	_, err := NewShader("fragment only", `@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`)
	assert.ErrorIs(t, err, common.ErrShaderInvalid)
}

func TestVertexLayoutsFromStruct(t *testing.T) {
	s, err := NewShader("textured", texturedSource)
	require.NoError(t, err)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(32), layouts[0].ArrayStride)
	assert.Equal(t, []backend.VertexAttribute{
		{Format: backend.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		{Format: backend.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		{Format: backend.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	}, layouts[0].Attributes)
}

func TestVertexLayoutsFromLooseParameters(t *testing.T) {
	src := `
@vertex
fn main(@builtin(vertex_index) index: u32, @location(0) pos: vec3f, @location(3) weight: f32) -> @builtin(position) vec4f {
    return vec4f(pos * weight, 1.0);
}
`
	s, err := NewShader("loose", src)
	require.NoError(t, err)
	assert.Empty(t, s.FragmentEntryPoint())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(16), layouts[0].ArrayStride)
	assert.Equal(t, uint32(3), layouts[0].Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(12), layouts[0].Attributes[1].Offset)
}

func TestVertexLayoutsFullScreenTriangle(t *testing.T) {
	src := `
@vertex
fn vs(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`
	s, err := NewShader("fullscreen", src)
	require.NoError(t, err)
	assert.Empty(t, s.VertexLayouts())
}

func TestGroupLayoutEntries(t *testing.T) {
	s, err := NewShader("textured", texturedSource)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1}, s.Groups())

	g0 := s.GroupLayoutEntries(0)
	require.Len(t, g0, 2)
	assert.Equal(t, uint32(0), g0[0].Binding)
	assert.Equal(t, backend.BindingKindTexture, g0[0].Kind)
	assert.Equal(t, backend.BindingKindSampler, g0[1].Kind)
	assert.Equal(t, backend.ShaderStageVertex|backend.ShaderStageFragment, g0[1].Visibility)

	g1 := s.GroupLayoutEntries(1)
	require.Len(t, g1, 1)
	assert.Equal(t, backend.BindingKindBuffer, g1[0].Kind)
	assert.Equal(t, backend.BufferBindingTypeUniform, g1[0].BufferType)
	// mat4x4 (64) + vec3 (12) rounded up to the 16 byte struct alignment.
	assert.Equal(t, uint64(80), g1[0].MinBindingSize)

	assert.Equal(t, "globals", s.BindingName(1, 0))
	assert.Equal(t, "t_sampler", s.BindingName(0, 1))
	assert.Empty(t, s.BindingName(3, 0))
	assert.Nil(t, s.GroupLayoutEntries(3))
}

func TestResolveTypeLayoutArrays(t *testing.T) {
	known := map[string]wgslTypeLayout{"Light": {32, 16}}

	l, ok := resolveTypeLayout("array<Light, 4>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(128), l.size)

	l, ok = resolveTypeLayout("array<vec3<f32>>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(16), l.size)

	_, ok = resolveTypeLayout("Unknown", known)
	assert.False(t, ok)
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c\n// last"
	assert.Equal(t, "a \nb  c\n", stripComments(src))
}

func TestNewShaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textured.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(texturedSource), 0o644))

	s, err := NewShaderFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "textured.wgsl", s.Label())

	_, err = NewShaderFromFile(filepath.Join(t.TempDir(), "missing.wgsl"))
	assert.Error(t, err)
}

func TestValidateRejectsBrokenSource(t *testing.T) {
	s, err := NewShader("broken", "@vertex fn vs( -> {")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Validate(), common.ErrShaderInvalid)
}
