package wgpu_backend

import (
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

func toTextureFormat(f backend.TextureFormat) wgpu.TextureFormat {
	switch f {
	case backend.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case backend.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case backend.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case backend.TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case backend.TextureFormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	case backend.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatUndefined
	}
}

func fromTextureFormat(f wgpu.TextureFormat) backend.TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return backend.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return backend.TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8Unorm:
		return backend.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return backend.TextureFormatBGRA8UnormSrgb
	case wgpu.TextureFormatDepth24Plus:
		return backend.TextureFormatDepth24Plus
	case wgpu.TextureFormatDepth32Float:
		return backend.TextureFormatDepth32Float
	default:
		return backend.TextureFormatUndefined
	}
}

func toBufferUsage(u backend.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u.Has(backend.BufferUsageVertex) {
		out |= wgpu.BufferUsageVertex
	}
	if u.Has(backend.BufferUsageIndex) {
		out |= wgpu.BufferUsageIndex
	}
	if u.Has(backend.BufferUsageUniform) {
		out |= wgpu.BufferUsageUniform
	}
	if u.Has(backend.BufferUsageStorage) {
		out |= wgpu.BufferUsageStorage
	}
	if u.Has(backend.BufferUsageCopySrc) {
		out |= wgpu.BufferUsageCopySrc
	}
	if u.Has(backend.BufferUsageCopyDst) {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func toTextureUsage(u backend.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u.Has(backend.TextureUsageTextureBinding) {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u.Has(backend.TextureUsageRenderAttachment) {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u.Has(backend.TextureUsageCopySrc) {
		out |= wgpu.TextureUsageCopySrc
	}
	if u.Has(backend.TextureUsageCopyDst) {
		out |= wgpu.TextureUsageCopyDst
	}
	return out
}

func toShaderStage(s backend.ShaderStage) wgpu.ShaderStage {
	out := wgpu.ShaderStageNone
	if s&backend.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&backend.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func toAddressMode(m backend.AddressMode) wgpu.AddressMode {
	switch m {
	case backend.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	case backend.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

func toFilterMode(m backend.FilterMode) wgpu.FilterMode {
	if m == backend.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func toMipmapFilterMode(m backend.FilterMode) wgpu.MipmapFilterMode {
	if m == backend.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func toCompareFunction(c backend.CompareFunction) wgpu.CompareFunction {
	switch c {
	case backend.CompareFunctionNever:
		return wgpu.CompareFunctionNever
	case backend.CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case backend.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case backend.CompareFunctionEqual:
		return wgpu.CompareFunctionEqual
	case backend.CompareFunctionGreater:
		return wgpu.CompareFunctionGreater
	case backend.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionUndefined
	}
}

func toPresentMode(m backend.PresentMode) wgpu.PresentMode {
	if m == backend.PresentModeImmediate {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// fromPresentMode reports false for modes the backend package has no equivalent of.
func fromPresentMode(m wgpu.PresentMode) (backend.PresentMode, bool) {
	switch m {
	case wgpu.PresentModeFifo:
		return backend.PresentModeFifo, true
	case wgpu.PresentModeImmediate:
		return backend.PresentModeImmediate, true
	default:
		return 0, false
	}
}

func toAlphaMode(m backend.AlphaMode) wgpu.CompositeAlphaMode {
	switch m {
	case backend.AlphaModeOpaque:
		return wgpu.CompositeAlphaModeOpaque
	case backend.AlphaModePremultiplied:
		return wgpu.CompositeAlphaModePremultiplied
	default:
		return wgpu.CompositeAlphaModeAuto
	}
}

// fromAlphaMode reports false for modes the backend package has no equivalent of.
func fromAlphaMode(m wgpu.CompositeAlphaMode) (backend.AlphaMode, bool) {
	switch m {
	case wgpu.CompositeAlphaModeAuto:
		return backend.AlphaModeAuto, true
	case wgpu.CompositeAlphaModeOpaque:
		return backend.AlphaModeOpaque, true
	case wgpu.CompositeAlphaModePremultiplied:
		return backend.AlphaModePremultiplied, true
	default:
		return 0, false
	}
}

// fromSurfaceCapabilities keeps the reported formats and modes that have a backend equivalent,
// in the order the adapter reported them.
func fromSurfaceCapabilities(caps wgpu.SurfaceCapabilities) backend.SurfaceCapabilities {
	out := backend.SurfaceCapabilities{
		Formats:      make([]backend.TextureFormat, 0, len(caps.Formats)),
		PresentModes: make([]backend.PresentMode, 0, len(caps.PresentModes)),
		AlphaModes:   make([]backend.AlphaMode, 0, len(caps.AlphaModes)),
	}
	for _, f := range caps.Formats {
		if bf := fromTextureFormat(f); bf != backend.TextureFormatUndefined {
			out.Formats = append(out.Formats, bf)
		}
	}
	for _, m := range caps.PresentModes {
		if bm, ok := fromPresentMode(m); ok {
			out.PresentModes = append(out.PresentModes, bm)
		}
	}
	for _, m := range caps.AlphaModes {
		if bm, ok := fromAlphaMode(m); ok {
			out.AlphaModes = append(out.AlphaModes, bm)
		}
	}
	return out
}

func toTopology(t backend.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case backend.PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case backend.PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case backend.PrimitiveTopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case backend.PrimitiveTopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toFrontFace(f backend.FrontFace) wgpu.FrontFace {
	if f == backend.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toCullMode(c backend.CullMode) wgpu.CullMode {
	switch c {
	case backend.CullModeFront:
		return wgpu.CullModeFront
	case backend.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

// toBlendState returns nil for replace so the target writes without blending.
func toBlendState(m backend.BlendMode) *wgpu.BlendState {
	switch m {
	case backend.BlendModeAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	case backend.BlendModeAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
			},
		}
	default:
		return nil
	}
}

func toWriteMask(m backend.ColorWriteMask) wgpu.ColorWriteMask {
	if m == 0 || m == backend.ColorWriteMaskAll {
		return wgpu.ColorWriteMaskAll
	}
	var out wgpu.ColorWriteMask
	if m&backend.ColorWriteMaskRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&backend.ColorWriteMaskGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&backend.ColorWriteMaskBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&backend.ColorWriteMaskAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

func toLoadOp(op backend.LoadOp) wgpu.LoadOp {
	if op == backend.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func toIndexFormat(f backend.IndexFormat) wgpu.IndexFormat {
	if f == backend.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func toVertexFormat(f backend.VertexFormat) wgpu.VertexFormat {
	switch f {
	case backend.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32
	case backend.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case backend.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case backend.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case backend.VertexFormatUint32:
		return wgpu.VertexFormatUint32
	case backend.VertexFormatUnorm8x4:
		return wgpu.VertexFormatUnorm8x4
	default:
		return wgpu.VertexFormatUndefined
	}
}

func toVertexBufferLayouts(layouts []backend.VertexBufferLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         toVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == backend.VertexStepModeInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out
}

func toBindGroupLayoutEntry(e backend.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toShaderStage(e.Visibility),
	}
	switch e.Kind {
	case backend.BindingKindBuffer:
		switch e.BufferType {
		case backend.BufferBindingTypeStorage:
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		case backend.BufferBindingTypeReadOnlyStorage:
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		default:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		}
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case backend.BindingKindTexture:
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	case backend.BindingKindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	}
	return entry
}
