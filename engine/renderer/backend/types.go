package backend

import "fmt"

// BackendType identifies a backend implementation.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU (wgpu-native) backend.
	BackendTypeWGPU BackendType = iota

	// BackendTypeSoftware selects the CPU rasterizer. It needs no GPU or window system and
	// supports read-back of buffers and textures.
	BackendTypeSoftware
)

func (t BackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return fmt.Sprintf("BackendType(%d)", int(t))
	}
}

// ParseBackendType maps a configuration string ("wgpu", "software") to a BackendType.
//
// Parameters:
//   - s: the backend name
//
// Returns:
//   - BackendType: the matching backend type
//   - error: error if the name is unknown
func ParseBackendType(s string) (BackendType, error) {
	switch s {
	case "wgpu", "webgpu", "gpu":
		return BackendTypeWGPU, nil
	case "software", "cpu":
		return BackendTypeSoftware, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", s)
	}
}

// TextureFormat is the pixel format of a texture or surface.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatDepth24Plus
	TextureFormatDepth32Float
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case TextureFormatDepth24Plus:
		return "depth24plus"
	case TextureFormatDepth32Float:
		return "depth32float"
	default:
		return "undefined"
	}
}

// IsSRGB reports whether the format stores sRGB-encoded colour.
func (f TextureFormat) IsSRGB() bool {
	return f == TextureFormatRGBA8UnormSrgb || f == TextureFormatBGRA8UnormSrgb
}

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24Plus || f == TextureFormatDepth32Float
}

// BytesPerPixel returns the size of one texel, or 0 for an undefined format.
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatUndefined:
		return 0
	default:
		return 4
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint32 IndexFormat = iota
	IndexFormatUint16
)

func (f IndexFormat) String() string {
	if f == IndexFormatUint16 {
		return "uint16"
	}
	return "uint32"
}

// Size returns the byte size of one index.
func (f IndexFormat) Size() uint64 {
	if f == IndexFormatUint16 {
		return 2
	}
	return 4
}

// BindingKind is the kind of resource a binding slot accepts.
type BindingKind int

const (
	BindingKindBuffer BindingKind = iota
	BindingKindTexture
	BindingKindSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindBuffer:
		return "buffer"
	case BindingKindTexture:
		return "texture"
	case BindingKindSampler:
		return "sampler"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// BufferBindingType distinguishes uniform from storage buffer bindings.
type BufferBindingType int

const (
	BufferBindingTypeUniform BufferBindingType = iota
	BufferBindingTypeStorage
	BufferBindingTypeReadOnlyStorage
)

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageNone     ShaderStage = 0
	ShaderStageVertex   ShaderStage = 1 << 0
	ShaderStageFragment ShaderStage = 1 << 1
)

// BufferUsage is a bit set describing how a buffer may be used.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageCopySrc
	BufferUsageCopyDst
)

// Has reports whether every bit of other is set in u.
func (u BufferUsage) Has(other BufferUsage) bool {
	return u&other == other
}

// TextureUsage is a bit set describing how a texture may be used.
type TextureUsage uint32

const (
	TextureUsageTextureBinding TextureUsage = 1 << iota
	TextureUsageRenderAttachment
	TextureUsageCopySrc
	TextureUsageCopyDst
)

// Has reports whether every bit of other is set in u.
func (u TextureUsage) Has(other TextureUsage) bool {
	return u&other == other
}

// AddressMode controls sampling outside the [0, 1] texture coordinate range.
type AddressMode int

const (
	AddressModeRepeat AddressMode = iota
	AddressModeMirrorRepeat
	AddressModeClampToEdge
)

// FilterMode selects nearest or linear filtering.
type FilterMode int

const (
	FilterModeLinear FilterMode = iota
	FilterModeNearest
)

// CompareFunction is used by depth testing and comparison samplers.
type CompareFunction int

const (
	CompareFunctionUndefined CompareFunction = iota
	CompareFunctionNever
	CompareFunctionLess
	CompareFunctionLessEqual
	CompareFunctionEqual
	CompareFunctionGreater
	CompareFunctionAlways
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeFifo waits for vertical blank. Always supported.
	PresentModeFifo PresentMode = iota
	// PresentModeImmediate presents without waiting and may tear.
	PresentModeImmediate
)

func (m PresentMode) String() string {
	if m == PresentModeImmediate {
		return "immediate"
	}
	return "fifo"
}

// ParsePresentMode maps a configuration string to a PresentMode.
//
// Parameters:
//   - s: "fifo"/"vsync" or "immediate"/"uncapped"
//
// Returns:
//   - PresentMode: the matching present mode
//   - error: error if the name is unknown
func ParsePresentMode(s string) (PresentMode, error) {
	switch s {
	case "fifo", "vsync":
		return PresentModeFifo, nil
	case "immediate", "uncapped":
		return PresentModeImmediate, nil
	default:
		return 0, fmt.Errorf("unknown present mode %q", s)
	}
}

// AlphaMode controls how the compositor treats surface alpha.
type AlphaMode int

const (
	AlphaModeAuto AlphaMode = iota
	AlphaModeOpaque
	AlphaModePremultiplied
)

// PrimitiveTopology is the way vertices are assembled into primitives.
type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyPointList
)

// FrontFace is the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// BlendMode is a preset colour blend equation for the colour target.
type BlendMode int

const (
	// BlendModeReplace writes the fragment colour unchanged.
	BlendModeReplace BlendMode = iota
	// BlendModeAlpha is straight alpha "source over".
	BlendModeAlpha
	// BlendModeAdditive adds the fragment colour to the target.
	BlendModeAdditive
)

// ColorWriteMask selects which channels are written.
type ColorWriteMask uint32

const (
	ColorWriteMaskRed   ColorWriteMask = 1 << 0
	ColorWriteMaskGreen ColorWriteMask = 1 << 1
	ColorWriteMaskBlue  ColorWriteMask = 1 << 2
	ColorWriteMaskAlpha ColorWriteMask = 1 << 3
	ColorWriteMaskAll   ColorWriteMask = 0xF
)

// LoadOp is what happens to an attachment at the start of a pass.
type LoadOp int

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

// VertexFormat is the type of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
	VertexFormatUnorm8x4
)

// Size returns the byte size of the attribute.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32, VertexFormatUint32, VertexFormatUnorm8x4:
		return 4
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// VertexStepMode advances a vertex buffer per vertex or per instance.
type VertexStepMode int

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

// Color is a linear RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}
