package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
)

// WriteAlignment is the byte granularity of buffer writes. Write offsets must be a multiple of it,
// and so must write lengths unless the write ends exactly at the end of the buffer.
const WriteAlignment = 4

// CheckWrite validates a write of length bytes at offset into a buffer of size bytes.
//
// Parameters:
//   - offset: the byte offset of the write
//   - length: the number of bytes written
//   - size: the buffer size in bytes
//
// Returns:
//   - error: error wrapping common.ErrBufferSizeMismatch if the write is out of range or unaligned
func CheckWrite(offset, length, size uint64) error {
	if offset > size || length > size-offset {
		return fmt.Errorf("write of %d bytes at offset %d exceeds %d bytes: %w", length, offset, size, common.ErrBufferSizeMismatch)
	}
	if offset%WriteAlignment != 0 {
		return fmt.Errorf("write offset %d is not a multiple of %d: %w", offset, WriteAlignment, common.ErrBufferSizeMismatch)
	}
	if length%WriteAlignment != 0 && offset+length != size {
		return fmt.Errorf("write of %d bytes at offset %d is not a multiple of %d and does not end the buffer: %w",
			length, offset, WriteAlignment, common.ErrBufferSizeMismatch)
	}
	return nil
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	// Size is the buffer size in bytes. When zero, len(Contents) is used.
	Size  uint64
	Usage BufferUsage
	// Contents, when non-empty, is written into the buffer at creation.
	Contents []byte
}

// TextureDescriptor describes a 2D texture to create.
type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	Format        TextureFormat
	Usage         TextureUsage
	MipLevelCount uint32
	SampleCount   uint32
}

// SamplerDescriptor describes texture filtering and addressing.
type SamplerDescriptor struct {
	Label                                    string
	AddressModeU, AddressModeV, AddressModeW AddressMode
	MagFilter, MinFilter, MipmapFilter       FilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  CompareFunction
	MaxAnisotropy                            uint16
}

// BindGroupLayoutEntry describes one binding slot of a bind group layout.
// Texture slots are filterable float 2D textures and sampler slots are filtering samplers.
// Only the fields relevant to Kind are consulted.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Kind       BindingKind

	// BufferType and MinBindingSize apply to BindingKindBuffer.
	BufferType     BufferBindingType
	MinBindingSize uint64
}

// BindGroupLayoutDescriptor describes an ordered set of binding slots.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry is a concrete resource bound at one slot. Exactly one of
// Buffer, TextureView or Sampler is set.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	// Size of the bound range; zero binds to the end of the buffer.
	Size        uint64
	TextureView TextureView
	Sampler     Sampler
}

// Kind returns the kind of resource held by the entry.
func (e BindGroupEntry) Kind() BindingKind {
	switch {
	case e.TextureView != nil:
		return BindingKindTexture
	case e.Sampler != nil:
		return BindingKindSampler
	default:
		return BindingKindBuffer
	}
}

// BindGroupDescriptor instantiates a layout with concrete resources.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexAttribute is one attribute inside a vertex buffer layout.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes how a vertex buffer slot is read.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

// PrimitiveState is the rasterization configuration of a pipeline.
type PrimitiveState struct {
	Topology  PrimitiveTopology
	FrontFace FrontFace
	CullMode  CullMode
}

// MultisampleState is the multisample configuration of a pipeline.
type MultisampleState struct {
	Count uint32
	Mask  uint32
}

// DepthStencilState enables depth testing for a pipeline.
type DepthStencilState struct {
	Format            TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
	DepthBias         int32
	DepthBiasSlope    float32
}

// ColorTargetState describes the single colour attachment written by a pipeline.
type ColorTargetState struct {
	Format    TextureFormat
	Blend     BlendMode
	WriteMask ColorWriteMask
}

// RenderPipelineDescriptor describes a render pipeline to compile.
type RenderPipelineDescriptor struct {
	Label            string
	ShaderSource     string
	VertexEntryPoint string
	// FragmentEntryPoint may be empty for depth-only pipelines.
	FragmentEntryPoint string
	VertexBuffers      []VertexBufferLayout
	BindGroupLayouts   []BindGroupLayout
	Primitive          PrimitiveState
	Multisample        MultisampleState
	DepthStencil       *DepthStencilState
	// Multiview is the number of array layers rendered in one pass; 0 disables multiview.
	Multiview uint32
	Target    ColorTargetState
}

// RenderPassDescriptor describes one render pass with a single colour attachment.
type RenderPassDescriptor struct {
	Label      string
	View       TextureView
	LoadOp     LoadOp
	ClearColor Color
	// Depth is optional. Pipelines with depth testing require it.
	Depth *DepthAttachment
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	ClearValue float32
}

// SurfaceCapabilities lists what a surface supports on the opened device.
type SurfaceCapabilities struct {
	Formats      []TextureFormat
	PresentModes []PresentMode
	AlphaModes   []AlphaMode
}

// SurfaceConfiguration is the swapchain configuration of a surface.
type SurfaceConfiguration struct {
	Width, Height uint32
	Format        TextureFormat
	PresentMode   PresentMode
	AlphaMode     AlphaMode
	// MaximumFrameLatency is the desired number of frames in flight, at least 1.
	MaximumFrameLatency uint32
}
