package wgpu_backend

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestTextureFormatRoundTrip(t *testing.T) {
	formats := []backend.TextureFormat{
		backend.TextureFormatRGBA8Unorm,
		backend.TextureFormatRGBA8UnormSrgb,
		backend.TextureFormatBGRA8Unorm,
		backend.TextureFormatBGRA8UnormSrgb,
		backend.TextureFormatDepth24Plus,
		backend.TextureFormatDepth32Float,
	}
	for _, f := range formats {
		assert.Equal(t, f, fromTextureFormat(toTextureFormat(f)), f.String())
	}
	assert.Equal(t, wgpu.TextureFormatUndefined, toTextureFormat(backend.TextureFormatUndefined))
}

func TestBufferUsageFlags(t *testing.T) {
	u := toBufferUsage(backend.BufferUsageVertex | backend.BufferUsageCopyDst)
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, u)
}

func TestBlendStateReplaceIsNil(t *testing.T) {
	assert.Nil(t, toBlendState(backend.BlendModeReplace))

	alpha := toBlendState(backend.BlendModeAlpha)
	if assert.NotNil(t, alpha) {
		assert.Equal(t, wgpu.BlendFactorSrcAlpha, alpha.Color.SrcFactor)
		assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, alpha.Color.DstFactor)
	}
}

func TestWriteMaskZeroMeansAll(t *testing.T) {
	assert.Equal(t, wgpu.ColorWriteMaskAll, toWriteMask(0))
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskAlpha,
		toWriteMask(backend.ColorWriteMaskRed|backend.ColorWriteMaskAlpha))
}

func TestBindGroupLayoutEntryKinds(t *testing.T) {
	buf := toBindGroupLayoutEntry(backend.BindGroupLayoutEntry{
		Binding:    2,
		Visibility: backend.ShaderStageVertex | backend.ShaderStageFragment,
		Kind:       backend.BindingKindBuffer,
	})
	assert.Equal(t, uint32(2), buf.Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, buf.Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, buf.Visibility)

	tex := toBindGroupLayoutEntry(backend.BindGroupLayoutEntry{Kind: backend.BindingKindTexture})
	assert.Equal(t, wgpu.TextureViewDimension2D, tex.Texture.ViewDimension)

	samp := toBindGroupLayoutEntry(backend.BindGroupLayoutEntry{Kind: backend.BindingKindSampler})
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, samp.Sampler.Type)
}

func TestVertexBufferLayouts(t *testing.T) {
	out := toVertexBufferLayouts([]backend.VertexBufferLayout{{
		ArrayStride: 20,
		StepMode:    backend.VertexStepModeInstance,
		Attributes: []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1},
		},
	}})
	if assert.Len(t, out, 1) {
		assert.Equal(t, uint64(20), out[0].ArrayStride)
		assert.Equal(t, wgpu.VertexStepModeInstance, out[0].StepMode)
		assert.Len(t, out[0].Attributes, 2)
		assert.Equal(t, wgpu.VertexFormatFloat32x3, out[0].Attributes[1].Format)
	}
}

func TestSurfaceCapabilitiesFollowTheAdapter(t *testing.T) {
	caps := fromSurfaceCapabilities(wgpu.SurfaceCapabilities{
		Formats:      []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA16Float},
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeMailbox, wgpu.PresentModeFifo},
		AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeInherit, wgpu.CompositeAlphaModeOpaque},
	})
	assert.Equal(t, []backend.TextureFormat{backend.TextureFormatBGRA8UnormSrgb}, caps.Formats)
	assert.Equal(t, []backend.PresentMode{backend.PresentModeFifo}, caps.PresentModes)
	assert.Equal(t, []backend.AlphaMode{backend.AlphaModeOpaque}, caps.AlphaModes)

	cfg := backend.SurfaceConfiguration{
		Width: 4, Height: 4, MaximumFrameLatency: 1,
		Format:      backend.TextureFormatBGRA8UnormSrgb,
		PresentMode: backend.PresentModeFifo,
		AlphaMode:   backend.AlphaModeOpaque,
	}
	assert.NoError(t, checkConfiguration(caps, cfg))

	immediate := cfg
	immediate.PresentMode = backend.PresentModeImmediate
	assert.ErrorIs(t, checkConfiguration(caps, immediate), common.ErrSurfaceConfigurationInvalid)

	premultiplied := cfg
	premultiplied.AlphaMode = backend.AlphaModePremultiplied
	assert.ErrorIs(t, checkConfiguration(caps, premultiplied), common.ErrSurfaceConfigurationInvalid)
}

func TestModeConversions(t *testing.T) {
	for _, m := range []backend.PresentMode{backend.PresentModeFifo, backend.PresentModeImmediate} {
		got, ok := fromPresentMode(toPresentMode(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	for _, m := range []backend.AlphaMode{backend.AlphaModeAuto, backend.AlphaModeOpaque, backend.AlphaModePremultiplied} {
		got, ok := fromAlphaMode(toAlphaMode(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := fromPresentMode(wgpu.PresentModeFifoRelaxed)
	assert.False(t, ok)
}
