package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coloredSource = `
struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(position, 0.0, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

func newContext(t *testing.T, opts ...graphics.GraphicsContextBuilderOption) graphics.GraphicsContext {
	t.Helper()
	opts = append([]graphics.GraphicsContextBuilderOption{graphics.WithBackend(backend.BackendTypeSoftware)}, opts...)
	ctx, err := graphics.NewGraphicsContext(opts...)
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func newShader(t *testing.T) shader.Shader {
	t.Helper()
	sh, err := shader.NewShader("colored", coloredSource)
	require.NoError(t, err)
	return sh
}

func TestNewPipelineDefaults(t *testing.T) {
	ctx := newContext(t)

	p, err := NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), nil, nil)
	require.NoError(t, err)
	defer p.Release()

	desc := p.Descriptor()
	assert.Equal(t, "colored", p.Label())
	assert.Equal(t, "vs_main", desc.VertexEntryPoint)
	assert.Equal(t, "fs_main", desc.FragmentEntryPoint)
	assert.Equal(t, backend.PrimitiveState{
		Topology:  backend.PrimitiveTopologyTriangleList,
		FrontFace: backend.FrontFaceCCW,
		CullMode:  backend.CullModeBack,
	}, desc.Primitive)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, backend.BlendModeReplace, desc.Target.Blend)
	assert.Equal(t, backend.ColorWriteMaskAll, desc.Target.WriteMask)
	assert.Equal(t, backend.TextureFormatRGBA8Unorm, p.TargetFormat())
}

func TestNewPipelineUsesReflectedLayoutsWhenNil(t *testing.T) {
	ctx := newContext(t)

	p, err := NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), nil, nil)
	require.NoError(t, err)

	layouts := p.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(24), layouts[0].ArrayStride)
	assert.Len(t, layouts[0].Attributes, 2)
}

func TestNewPipelineExplicitLayoutsOverrideReflection(t *testing.T) {
	ctx := newContext(t)

	packed := []backend.VertexBufferLayout{{
		ArrayStride: 12,
		Attributes: []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: 1},
		},
	}}
	p, err := NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), packed, nil)
	require.NoError(t, err)
	assert.Equal(t, packed, p.VertexLayouts())

	// An empty, non-nil slice means the pipeline reads no vertex buffers.
	p, err = NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), []backend.VertexBufferLayout{}, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Descriptor().VertexBuffers)
}

func TestNewPipelineExtOptions(t *testing.T) {
	ctx := newContext(t)

	p, err := NewPipelineExt(ctx, TargetFormat(backend.TextureFormatBGRA8Unorm), newShader(t), nil, nil,
		WithLabel("overlay"),
		WithTopology(backend.PrimitiveTopologyTriangleStrip),
		WithFrontFace(backend.FrontFaceCW),
		WithCullMode(backend.CullModeNone),
		WithBlendMode(backend.BlendModeAlpha),
		WithWriteMask(backend.ColorWriteMaskRed|backend.ColorWriteMaskAlpha),
		WithMultisample(0, 0x1),
		WithDepthStencil(backend.TextureFormatDepth32Float, true, backend.CompareFunctionLessEqual),
		WithDepthBias(2, 1.5),
	)
	require.NoError(t, err)

	desc := p.Descriptor()
	assert.Equal(t, "overlay", desc.Label)
	assert.Equal(t, backend.PrimitiveTopologyTriangleStrip, desc.Primitive.Topology)
	assert.Equal(t, backend.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Equal(t, backend.CullModeNone, desc.Primitive.CullMode)
	assert.Equal(t, backend.BlendModeAlpha, desc.Target.Blend)
	assert.Equal(t, backend.ColorWriteMaskRed|backend.ColorWriteMaskAlpha, desc.Target.WriteMask)
	assert.Equal(t, backend.MultisampleState{Count: 1, Mask: 0x1}, desc.Multisample)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, backend.DepthStencilState{
		Format:            backend.TextureFormatDepth32Float,
		DepthWriteEnabled: true,
		DepthCompare:      backend.CompareFunctionLessEqual,
		DepthBias:         2,
		DepthBiasSlope:    1.5,
	}, *desc.DepthStencil)
}

func TestWithDepthBiasWithoutDepthIsIgnored(t *testing.T) {
	ctx := newContext(t)

	p, err := NewPipelineExt(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), nil, nil, WithDepthBias(4, 1))
	require.NoError(t, err)
	assert.Nil(t, p.Descriptor().DepthStencil)
}

func TestNewPipelineGroupLayouts(t *testing.T) {
	ctx := newContext(t)

	l, err := group.NewLayout(ctx, "globals", group.BufferEntry(backend.ShaderStageVertex))
	require.NoError(t, err)

	p, err := NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), nil, []group.Layout{l})
	require.NoError(t, err)
	require.Len(t, p.GroupLayouts(), 1)
	assert.Equal(t, l, p.GroupLayouts()[0])
	assert.Equal(t, []backend.BindGroupLayout{l.Raw()}, p.Descriptor().BindGroupLayouts)

	_, err = NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), newShader(t), nil, []group.Layout{nil})
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
}

func TestNewPipelineNilShader(t *testing.T) {
	ctx := newContext(t)

	_, err := NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), nil, nil, nil)
	assert.ErrorIs(t, err, common.ErrShaderInvalid)
}

func TestNewPipelineValidatesWhenEnabled(t *testing.T) {
	broken, err := shader.NewShader("broken", "@vertex fn vs( -> {")
	require.NoError(t, err)

	ctx := newContext(t)
	_, err = NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), broken, []backend.VertexBufferLayout{}, nil)
	assert.NoError(t, err, "validation is off by default")

	ctx = newContext(t, graphics.WithShaderValidation(true))
	_, err = NewPipeline(ctx, TargetFormat(backend.TextureFormatRGBA8Unorm), broken, []backend.VertexBufferLayout{}, nil)
	assert.ErrorIs(t, err, common.ErrShaderInvalid)
}
