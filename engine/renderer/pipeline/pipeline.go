// Package pipeline compiles immutable render pipelines from a shader, its vertex buffer
// layouts and the ordered resource group layouts it reads at draw time.
package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shader"
)

// ColorTarget is anything a pipeline can render into. graphics.Surface satisfies it, as does
// the framebuffer, and TargetFormat wraps a bare format.
type ColorTarget interface {
	// Format returns the pixel format of the colour attachment.
	Format() backend.TextureFormat
}

// TargetFormat is a ColorTarget for a bare texture format.
type TargetFormat backend.TextureFormat

// Format returns the wrapped format.
func (f TargetFormat) Format() backend.TextureFormat {
	return backend.TextureFormat(f)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	label          string
	shader         shader.Shader
	groupLayouts   []group.Layout
	vertexLayouts  []backend.VertexBufferLayout
	renderPipeline backend.RenderPipeline

	// The following are set by the builder options before the pipeline is compiled.

	vertexEntryPoint   string
	fragmentEntryPoint string
	topology           backend.PrimitiveTopology
	frontFace          backend.FrontFace
	cullMode           backend.CullMode
	blendMode          backend.BlendMode
	writeMask          backend.ColorWriteMask
	sampleCount        uint32
	sampleMask         uint32
	depthStencil       *backend.DepthStencilState
	multiview          uint32
}

// Pipeline is a compiled draw configuration. It is immutable once created and may be reused
// across frames and across resource groups that match its layouts.
type Pipeline interface {
	// Label returns the debug label of the pipeline.
	//
	// Returns:
	//   - string: the pipeline label
	Label() string

	// Shader returns the shader the pipeline was compiled from.
	//
	// Returns:
	//   - shader.Shader: the source shader
	Shader() shader.Shader

	// GroupLayouts returns the group layouts expected at draw time, in group index order.
	//
	// Returns:
	//   - []group.Layout: a copy of the layouts
	GroupLayouts() []group.Layout

	// VertexLayouts returns the vertex buffer layouts, in slot order.
	//
	// Returns:
	//   - []backend.VertexBufferLayout: a copy of the layouts
	VertexLayouts() []backend.VertexBufferLayout

	// Descriptor returns the descriptor the backend pipeline was created from.
	//
	// Returns:
	//   - backend.RenderPipelineDescriptor: the full pipeline configuration
	Descriptor() backend.RenderPipelineDescriptor

	// TargetFormat returns the colour attachment format the pipeline writes.
	//
	// Returns:
	//   - backend.TextureFormat: the target format
	TargetFormat() backend.TextureFormat

	// Raw returns the backend pipeline.
	//
	// Returns:
	//   - backend.RenderPipeline: the backend handle
	Raw() backend.RenderPipeline

	// Release releases the backend pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline compiles a pipeline with the default configuration: triangle list, counter
// clockwise front faces with back faces culled, one sample, no depth test, replace blending
// and all channels written.
//
// Parameters:
//   - ctx: the graphics context to compile on
//   - target: the colour target whose format the pipeline writes
//   - sh: the shader; its first @vertex and @fragment functions are the entry points
//   - vertexLayouts: the vertex buffer layouts in slot order, or nil to use the layouts reflected from the shader
//   - groupLayouts: the resource group layouts in group index order
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: error wrapping common.ErrShaderInvalid if the shader fails to compile
func NewPipeline(
	ctx graphics.GraphicsContext,
	target ColorTarget,
	sh shader.Shader,
	vertexLayouts []backend.VertexBufferLayout,
	groupLayouts []group.Layout,
) (Pipeline, error) {
	return NewPipelineExt(ctx, target, sh, vertexLayouts, groupLayouts)
}

// NewPipelineExt compiles a pipeline with every option exposed. Options not given keep the
// defaults described on NewPipeline.
//
// Parameters:
//   - ctx: the graphics context to compile on
//   - target: the colour target whose format the pipeline writes
//   - sh: the shader
//   - vertexLayouts: the vertex buffer layouts in slot order, or nil to use the layouts reflected from the shader
//   - groupLayouts: the resource group layouts in group index order
//   - opts: pipeline options, see the With* functions in this package
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: error wrapping common.ErrShaderInvalid if the shader is missing or fails to compile
func NewPipelineExt(
	ctx graphics.GraphicsContext,
	target ColorTarget,
	sh shader.Shader,
	vertexLayouts []backend.VertexBufferLayout,
	groupLayouts []group.Layout,
	opts ...PipelineBuilderOption,
) (Pipeline, error) {
	if sh == nil {
		return nil, fmt.Errorf("pipeline has no shader: %w", common.ErrShaderInvalid)
	}
	if target == nil {
		return nil, fmt.Errorf("pipeline %q has no colour target", sh.Label())
	}

	p := &pipeline{
		label:              sh.Label(),
		shader:             sh,
		vertexEntryPoint:   sh.VertexEntryPoint(),
		fragmentEntryPoint: sh.FragmentEntryPoint(),
		topology:           backend.PrimitiveTopologyTriangleList,
		frontFace:          backend.FrontFaceCCW,
		cullMode:           backend.CullModeBack,
		blendMode:          backend.BlendModeReplace,
		writeMask:          backend.ColorWriteMaskAll,
		sampleCount:        1,
		sampleMask:         0xFFFFFFFF,
	}
	for _, opt := range opts {
		opt(p)
	}

	if vertexLayouts == nil {
		vertexLayouts = sh.VertexLayouts()
	}
	p.vertexLayouts = append([]backend.VertexBufferLayout(nil), vertexLayouts...)
	p.groupLayouts = append([]group.Layout(nil), groupLayouts...)

	if ctx.ShaderValidation() {
		if err := sh.Validate(); err != nil {
			return nil, err
		}
	}

	raws := make([]backend.BindGroupLayout, len(p.groupLayouts))
	for i, l := range p.groupLayouts {
		if l == nil {
			return nil, fmt.Errorf("pipeline %q: group layout %d is nil: %w", p.label, i, common.ErrResourceBindingMismatch)
		}
		raws[i] = l.Raw()
	}

	desc := backend.RenderPipelineDescriptor{
		Label:              p.label,
		ShaderSource:       sh.Source(),
		VertexEntryPoint:   p.vertexEntryPoint,
		FragmentEntryPoint: p.fragmentEntryPoint,
		VertexBuffers:      p.vertexLayouts,
		BindGroupLayouts:   raws,
		Primitive: backend.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: backend.MultisampleState{
			Count: p.sampleCount,
			Mask:  p.sampleMask,
		},
		DepthStencil: p.depthStencil,
		Multiview:    p.multiview,
		Target: backend.ColorTargetState{
			Format:    target.Format(),
			Blend:     p.blendMode,
			WriteMask: p.writeMask,
		},
	}

	rp, err := ctx.Backend().CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline %q: %w", p.label, err)
	}
	p.renderPipeline = rp

	common.Logger().Debug("pipeline created",
		"label", p.label,
		"format", target.Format().String(),
		"vertex_buffers", len(p.vertexLayouts),
		"groups", len(p.groupLayouts),
	)
	return p, nil
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) GroupLayouts() []group.Layout {
	return append([]group.Layout(nil), p.groupLayouts...)
}

func (p *pipeline) VertexLayouts() []backend.VertexBufferLayout {
	return append([]backend.VertexBufferLayout(nil), p.vertexLayouts...)
}

func (p *pipeline) Descriptor() backend.RenderPipelineDescriptor {
	return p.renderPipeline.Descriptor()
}

func (p *pipeline) TargetFormat() backend.TextureFormat {
	return p.renderPipeline.Descriptor().Target.Format
}

func (p *pipeline) Raw() backend.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Release() {
	p.renderPipeline.Release()
}
