package software_backend

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// colorLayout is position (float32x2) at location 0 and colour (float32x4) at location 1.
var colorLayout = backend.VertexBufferLayout{
	ArrayStride: 24,
	Attributes: []backend.VertexAttribute{
		{Format: backend.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		{Format: backend.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
	},
}

func newTestBackend(t *testing.T, workers int) backend.Backend {
	t.Helper()
	b := New(backend.Options{Label: t.Name(), RasterWorkers: workers})
	t.Cleanup(b.Release)
	return b
}

func newTarget(t *testing.T, b backend.Backend, w, h uint32, format backend.TextureFormat) (backend.Texture, backend.TextureView) {
	t.Helper()
	tex, err := b.CreateTexture(backend.TextureDescriptor{
		Label: "target", Width: w, Height: h, Format: format,
		Usage: backend.TextureUsageRenderAttachment | backend.TextureUsageCopySrc,
	})
	require.NoError(t, err)
	view, err := tex.CreateView()
	require.NoError(t, err)
	return tex, view
}

func newPipeline(t *testing.T, b backend.Backend, format backend.TextureFormat, layouts []backend.VertexBufferLayout, groups []backend.BindGroupLayout, opts ...func(*backend.RenderPipelineDescriptor)) backend.RenderPipeline {
	t.Helper()
	desc := backend.RenderPipelineDescriptor{
		Label:              "test pipeline",
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		VertexBuffers:      layouts,
		BindGroupLayouts:   groups,
		Primitive:          backend.PrimitiveState{CullMode: backend.CullModeBack},
		Multisample:        backend.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Target:             backend.ColorTargetState{Format: format, WriteMask: backend.ColorWriteMaskAll},
	}
	for _, opt := range opts {
		opt(&desc)
	}
	p, err := b.CreateRenderPipeline(desc)
	require.NoError(t, err)
	return p
}

func vertexBuffer(t *testing.T, b backend.Backend, data []float32) backend.Buffer {
	t.Helper()
	buf, err := b.CreateBuffer(backend.BufferDescriptor{
		Label:    "vertices",
		Usage:    backend.BufferUsageVertex | backend.BufferUsageCopyDst,
		Contents: common.SliceToBytes(data),
	})
	require.NoError(t, err)
	return buf
}

// record runs fn inside a single pass over view and submits the result.
func record(t *testing.T, b backend.Backend, view backend.TextureView, clear backend.Color, fn func(backend.RenderPass)) error {
	t.Helper()
	enc, err := b.CreateCommandEncoder("test")
	require.NoError(t, err)
	pass, err := enc.BeginRenderPass(backend.RenderPassDescriptor{View: view, LoadOp: backend.LoadOpClear, ClearColor: clear})
	require.NoError(t, err)
	fn(pass)
	if err := pass.End(); err != nil {
		return err
	}
	cb, err := enc.Finish()
	require.NoError(t, err)
	return b.Submit(cb)
}

func pixel(t *testing.T, b backend.Backend, tex backend.Texture, x, y int) []byte {
	t.Helper()
	data, err := ReadPixels(b, tex)
	require.NoError(t, err)
	at := (y*int(tex.Width()) + x) * 4
	return data[at : at+4]
}

func TestClearFillsTarget(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 4, 4, backend.TextureFormatRGBA8Unorm)

	require.NoError(t, record(t, b, view, backend.Color{R: 1, A: 1}, func(backend.RenderPass) {}))

	data, err := b.(backend.Readback).ReadTexture(tex)
	require.NoError(t, err)
	for i := 0; i < len(data); i += 4 {
		assert.Equal(t, []byte{255, 0, 0, 255}, data[i:i+4])
	}
}

func TestClearBGRAByteOrder(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 2, 2, backend.TextureFormatBGRA8UnormSrgb)

	require.NoError(t, record(t, b, view, backend.Color{B: 1, A: 1}, func(backend.RenderPass) {}))

	raw, err := b.(backend.Readback).ReadTexture(tex)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 255}, raw[0:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, pixel(t, b, tex, 0, 0))
}

func TestDrawVertexColorTriangle(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 4, 4, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	vb := vertexBuffer(t, b, []float32{
		-1, -1, 0, 1, 0, 1,
		1, -1, 0, 1, 0, 1,
		-1, 1, 0, 1, 0, 1,
	})

	require.NoError(t, record(t, b, view, backend.Color{A: 1}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.Draw(3, 1, 0, 0)
	}))

	assert.Equal(t, []byte{0, 255, 0, 255}, pixel(t, b, tex, 0, 3), "bottom-left is covered")
	assert.Equal(t, []byte{0, 0, 0, 255}, pixel(t, b, tex, 3, 0), "top-right keeps the clear colour")
}

func TestBackFaceCulling(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 4, 4, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	// clockwise winding
	vb := vertexBuffer(t, b, []float32{
		-1, -1, 1, 1, 1, 1,
		-1, 1, 1, 1, 1, 1,
		1, -1, 1, 1, 1, 1,
	})

	require.NoError(t, record(t, b, view, backend.Color{A: 1}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.Draw(3, 1, 0, 0)
	}))
	assert.Equal(t, []byte{0, 0, 0, 255}, pixel(t, b, tex, 0, 3))

	noCull := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil,
		func(d *backend.RenderPipelineDescriptor) { d.Primitive.CullMode = backend.CullModeNone })
	require.NoError(t, record(t, b, view, backend.Color{A: 1}, func(pass backend.RenderPass) {
		pass.SetPipeline(noCull)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.Draw(3, 1, 0, 0)
	}))
	assert.Equal(t, []byte{255, 255, 255, 255}, pixel(t, b, tex, 0, 3))
}

func quadIndexed(t *testing.T, b backend.Backend) (backend.Buffer, backend.Buffer) {
	t.Helper()
	vb := vertexBuffer(t, b, []float32{
		-1, -1, 1, 0, 0, 1,
		1, -1, 0, 1, 0, 1,
		-1, 1, 0, 0, 1, 1,
		1, 1, 1, 1, 1, 1,
	})
	ib, err := b.CreateBuffer(backend.BufferDescriptor{
		Label:    "indices",
		Usage:    backend.BufferUsageIndex,
		Contents: common.SliceToBytes([]uint16{0, 1, 2, 2, 1, 3}),
	})
	require.NoError(t, err)
	return vb, ib
}

func TestDrawIndexedUint16CoversTarget(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 8, 8, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	vb, ib := quadIndexed(t, b)

	require.NoError(t, record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.SetIndexBuffer(ib, backend.IndexFormatUint16, 0, 0)
		pass.DrawIndexed(6, 1, 0, 0, 0)
	}))

	data, err := ReadPixels(b, tex)
	require.NoError(t, err)
	for i := 3; i < len(data); i += 4 {
		assert.Equal(t, byte(255), data[i], "texel %d left uncovered", i/4)
	}
}

func TestIndexedDrawOutOfRange(t *testing.T) {
	b := newTestBackend(t, 1)
	_, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	vb, ib := quadIndexed(t, b)

	err := record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.SetIndexBuffer(ib, backend.IndexFormatUint16, 0, 0)
		pass.DrawIndexed(9, 1, 0, 0, 0)
	})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)
}

func TestVertexSliceRangeMustNotWrap(t *testing.T) {
	b := newTestBackend(t, 1)
	_, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	vb := vertexBuffer(t, b, make([]float32, 18))
	ib, err := b.CreateBuffer(backend.BufferDescriptor{Size: 12, Usage: backend.BufferUsageIndex})
	require.NoError(t, err)

	err = record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 8, math.MaxUint64-3)
		pass.Draw(3, 1, 0, 0)
	})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)

	err = record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.SetIndexBuffer(ib, backend.IndexFormatUint16, 4, math.MaxUint64)
		pass.DrawIndexed(3, 1, 0, 0, 0)
	})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)
}

func TestDrawRangeIsBounded(t *testing.T) {
	b := newTestBackend(t, 1)
	_, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	fullScreen := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, nil, nil)
	colored := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
	vb := vertexBuffer(t, b, make([]float32, 18))

	err := record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(fullScreen)
		pass.Draw(math.MaxUint32, 1, 0, 0)
	})
	assert.ErrorContains(t, err, "exceeds the limit")

	err = record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(colored)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.Draw(6, 1, 0, 0)
	})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch, "six vertices from a three-vertex buffer")

	err = record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(fullScreen)
		pass.Draw(3, 2, 0, math.MaxUint32)
	})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch, "instance range wraps")

	require.NoError(t, record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(fullScreen)
		pass.Draw(3, 1, 0, math.MaxUint32)
	}))
}

func TestParallelBandsMatchSerial(t *testing.T) {
	render := func(workers int) []byte {
		b := newTestBackend(t, workers)
		tex, view := newTarget(t, b, 64, 48, backend.TextureFormatRGBA8Unorm)
		p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil)
		vb, ib := quadIndexed(t, b)
		require.NoError(t, record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
			pass.SetPipeline(p)
			pass.SetVertexBuffer(0, vb, 0, 0)
			pass.SetIndexBuffer(ib, backend.IndexFormatUint16, 0, 0)
			pass.DrawIndexed(6, 1, 0, 0, 0)
		}))
		data, err := ReadPixels(b, tex)
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, render(1), render(4))
}

func TestFullScreenTextureCopy(t *testing.T) {
	b := newTestBackend(t, 1)
	src, err := b.CreateTexture(backend.TextureDescriptor{
		Label: "source", Width: 2, Height: 2, Format: backend.TextureFormatRGBA8Unorm,
		Usage: backend.TextureUsageTextureBinding | backend.TextureUsageCopyDst,
	})
	require.NoError(t, err)
	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	require.NoError(t, b.WriteTexture(src, pixels))
	srcView, err := src.CreateView()
	require.NoError(t, err)
	samp, err := b.CreateSampler(backend.SamplerDescriptor{Label: "nearest"})
	require.NoError(t, err)

	layout, err := b.CreateBindGroupLayout(backend.BindGroupLayoutDescriptor{Entries: []backend.BindGroupLayoutEntry{
		{Binding: 0, Visibility: backend.ShaderStageFragment, Kind: backend.BindingKindTexture},
		{Binding: 1, Visibility: backend.ShaderStageFragment, Kind: backend.BindingKindSampler},
	}})
	require.NoError(t, err)
	group, err := b.CreateBindGroup(backend.BindGroupDescriptor{Layout: layout, Entries: []backend.BindGroupEntry{
		{Binding: 0, TextureView: srcView},
		{Binding: 1, Sampler: samp},
	}})
	require.NoError(t, err)

	tex, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, nil, []backend.BindGroupLayout{layout},
		func(d *backend.RenderPipelineDescriptor) { d.Primitive.CullMode = backend.CullModeNone })

	require.NoError(t, record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetBindGroup(0, group)
		pass.Draw(3, 1, 0, 0)
	}))

	out, err := ReadPixels(b, tex)
	require.NoError(t, err)
	assert.Equal(t, pixels, out)
}

func TestAlphaBlend(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{colorLayout}, nil,
		func(d *backend.RenderPipelineDescriptor) { d.Target.Blend = backend.BlendModeAlpha })
	vb := vertexBuffer(t, b, []float32{
		-1, -1, 1, 0, 0, 0.5,
		3, -1, 1, 0, 0, 0.5,
		-1, 3, 1, 0, 0, 0.5,
	})

	require.NoError(t, record(t, b, view, backend.Color{A: 1}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.SetVertexBuffer(0, vb, 0, 0)
		pass.Draw(3, 1, 0, 0)
	}))

	px := pixel(t, b, tex, 1, 1)
	assert.InDelta(t, 128, int(px[0]), 1)
	assert.Equal(t, byte(0), px[1])
	assert.Equal(t, byte(255), px[3])
}

func TestDepthTestKeepsNearest(t *testing.T) {
	b := newTestBackend(t, 1)
	tex, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	depthTex, err := b.CreateTexture(backend.TextureDescriptor{Width: 2, Height: 2, Format: backend.TextureFormatDepth32Float, Usage: backend.TextureUsageRenderAttachment})
	require.NoError(t, err)
	depthView, err := depthTex.CreateView()
	require.NoError(t, err)

	layout := backend.VertexBufferLayout{
		ArrayStride: 28,
		Attributes: []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
		},
	}
	p := newPipeline(t, b, backend.TextureFormatRGBA8Unorm, []backend.VertexBufferLayout{layout}, nil,
		func(d *backend.RenderPipelineDescriptor) {
			d.DepthStencil = &backend.DepthStencilState{Format: backend.TextureFormatDepth32Float, DepthWriteEnabled: true, DepthCompare: backend.CompareFunctionLess}
		})
	near := vertexBuffer(t, b, []float32{
		-1, -1, 0.25, 1, 0, 0, 1,
		3, -1, 0.25, 1, 0, 0, 1,
		-1, 3, 0.25, 1, 0, 0, 1,
	})
	far := vertexBuffer(t, b, []float32{
		-1, -1, 0.75, 0, 1, 0, 1,
		3, -1, 0.75, 0, 1, 0, 1,
		-1, 3, 0.75, 0, 1, 0, 1,
	})

	enc, err := b.CreateCommandEncoder("depth")
	require.NoError(t, err)
	pass, err := enc.BeginRenderPass(backend.RenderPassDescriptor{
		View:   view,
		LoadOp: backend.LoadOpClear,
		Depth:  &backend.DepthAttachment{View: depthView, LoadOp: backend.LoadOpClear, ClearValue: 1},
	})
	require.NoError(t, err)
	pass.SetPipeline(p)
	pass.SetVertexBuffer(0, near, 0, 0)
	pass.Draw(3, 1, 0, 0)
	pass.SetVertexBuffer(0, far, 0, 0)
	pass.Draw(3, 1, 0, 0)
	require.NoError(t, pass.End())
	cb, err := enc.Finish()
	require.NoError(t, err)
	require.NoError(t, b.Submit(cb))

	assert.Equal(t, []byte{255, 0, 0, 255}, pixel(t, b, tex, 0, 0))
}

func TestDrawWithoutPipelineFails(t *testing.T) {
	b := newTestBackend(t, 1)
	_, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	err := record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.Draw(3, 1, 0, 0)
	})
	assert.Error(t, err)
}

func TestPipelineFormatMustMatchTarget(t *testing.T) {
	b := newTestBackend(t, 1)
	_, view := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	p := newPipeline(t, b, backend.TextureFormatBGRA8Unorm, nil, nil)
	err := record(t, b, view, backend.Color{}, func(pass backend.RenderPass) {
		pass.SetPipeline(p)
		pass.Draw(3, 1, 0, 0)
	})
	assert.Error(t, err)
}

func TestResourcesFromAnotherBackend(t *testing.T) {
	a := newTestBackend(t, 1)
	b := newTestBackend(t, 1)
	buf, err := a.CreateBuffer(backend.BufferDescriptor{Size: 16, Usage: backend.BufferUsageUniform})
	require.NoError(t, err)

	assert.ErrorIs(t, b.WriteBuffer(buf, 0, []byte{1}), common.ErrBackendMismatch)

	enc, err := a.CreateCommandEncoder("a")
	require.NoError(t, err)
	cb, err := enc.Finish()
	require.NoError(t, err)
	assert.ErrorIs(t, b.Submit(cb), common.ErrBackendMismatch)
}

func TestWriteBounds(t *testing.T) {
	b := newTestBackend(t, 1)
	buf, err := b.CreateBuffer(backend.BufferDescriptor{Size: 8, Usage: backend.BufferUsageUniform | backend.BufferUsageCopyDst})
	require.NoError(t, err)
	require.NoError(t, b.WriteBuffer(buf, 4, []byte{1, 2, 3, 4}))
	assert.ErrorIs(t, b.WriteBuffer(buf, 6, []byte{1, 2, 3, 4}), common.ErrBufferSizeMismatch)

	data, err := b.(backend.Readback).ReadBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4}, data)

	_, err = b.CreateBuffer(backend.BufferDescriptor{})
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)

	tex, _ := newTarget(t, b, 2, 2, backend.TextureFormatRGBA8Unorm)
	assert.ErrorIs(t, b.WriteTexture(tex, make([]byte, 15)), common.ErrTextureDataMismatch)
}

func TestBindGroupMustMatchLayout(t *testing.T) {
	b := newTestBackend(t, 1)
	layout, err := b.CreateBindGroupLayout(backend.BindGroupLayoutDescriptor{Entries: []backend.BindGroupLayoutEntry{
		{Binding: 0, Kind: backend.BindingKindBuffer, Visibility: backend.ShaderStageVertex},
	}})
	require.NoError(t, err)
	samp, err := b.CreateSampler(backend.SamplerDescriptor{})
	require.NoError(t, err)

	_, err = b.CreateBindGroup(backend.BindGroupDescriptor{Layout: layout, Entries: []backend.BindGroupEntry{{Binding: 0, Sampler: samp}}})
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)

	_, err = b.CreateBindGroup(backend.BindGroupDescriptor{Layout: layout})
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)

	_, err = b.CreateBindGroupLayout(backend.BindGroupLayoutDescriptor{Entries: []backend.BindGroupLayoutEntry{{Binding: 1}, {Binding: 1}}})
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
}

func TestSurfaceLifecycle(t *testing.T) {
	b := newTestBackend(t, 1)
	s, err := b.CreateSurface(sizeTarget{w: 4, h: 4})
	require.NoError(t, err)

	_, err = s.CurrentTexture()
	assert.ErrorIs(t, err, common.ErrSurfaceConfigurationInvalid)
	assert.Error(t, s.Present())

	caps := s.Capabilities()
	require.NotEmpty(t, caps.Formats)
	err = s.Configure(backend.SurfaceConfiguration{Width: 0, Height: 4, Format: caps.Formats[0], MaximumFrameLatency: 2})
	assert.ErrorIs(t, err, common.ErrSurfaceConfigurationInvalid)
	err = s.Configure(backend.SurfaceConfiguration{Width: 4, Height: 4, Format: backend.TextureFormatDepth24Plus, MaximumFrameLatency: 2})
	assert.ErrorIs(t, err, common.ErrSurfaceConfigurationInvalid)

	require.NoError(t, s.Configure(backend.SurfaceConfiguration{Width: 4, Height: 3, Format: caps.Formats[0], MaximumFrameLatency: 2}))
	tex, err := s.CurrentTexture()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), tex.Width())
	assert.Equal(t, uint32(3), tex.Height())
	require.NoError(t, s.Present())

	n, ok := PresentCount(s)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), n)
}

func TestRegisteredDriverOpens(t *testing.T) {
	b, err := backend.Open(backend.BackendTypeSoftware, backend.WithRasterWorkers(2))
	require.NoError(t, err)
	defer b.Release()
	assert.Equal(t, backend.BackendTypeSoftware, b.Type())
	assert.Contains(t, b.AdapterInfo(), "2 workers")
}

type sizeTarget struct{ w, h int }

func (s sizeTarget) Width() int  { return s.w }
func (s sizeTarget) Height() int { return s.h }
