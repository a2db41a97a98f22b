package pipeline

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithLabel overrides the debug label, which defaults to the shader label.
//
// Parameters:
//   - label: the pipeline label
//
// Returns:
//   - PipelineBuilderOption: a function that sets the label for this pipeline
func WithLabel(label string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.label = label
	}
}

// WithEntryPoints overrides the entry points discovered from the shader. Empty names keep the discovered ones.
//
// Parameters:
//   - vertex: the vertex entry point name
//   - fragment: the fragment entry point name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points for this pipeline
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		if vertex != "" {
			p.vertexEntryPoint = vertex
		}
		if fragment != "" {
			p.fragmentEntryPoint = fragment
		}
	}
}

// WithTopology sets how vertices are assembled into primitives.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology for this pipeline
func WithTopology(topology backend.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order of front facing triangles.
//
// Parameters:
//   - face: the front face winding
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(face backend.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithCullMode sets which faces are discarded. Use backend.CullModeNone to draw both.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode backend.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithBlendMode sets how fragments are combined with the target.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend mode for this pipeline
func WithBlendMode(mode backend.BlendMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendMode = mode
	}
}

// WithWriteMask sets which colour channels are written.
//
// Parameters:
//   - mask: the channel mask
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask for this pipeline
func WithWriteMask(mask backend.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}

// WithMultisample sets the sample count and sample mask. A count of zero keeps one sample.
//
// Parameters:
//   - count: the number of samples per pixel
//   - mask: the sample mask
//
// Returns:
//   - PipelineBuilderOption: a function that sets the multisample state for this pipeline
func WithMultisample(count, mask uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = max(count, 1)
		p.sampleMask = mask
	}
}

// WithDepthStencil enables depth testing against a depth attachment of the given format.
// Passes drawing with this pipeline must provide a depth attachment.
//
// Parameters:
//   - format: the depth attachment format
//   - write: true to write passing fragment depths
//   - compare: the depth comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state for this pipeline
func WithDepthStencil(format backend.TextureFormat, write bool, compare backend.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthStencil = &backend.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: write,
			DepthCompare:      compare,
		}
	}
}

// WithDepthBias sets the constant and slope scaled depth bias. It has no effect without WithDepthStencil.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		if p.depthStencil == nil {
			return
		}
		p.depthStencil.DepthBias = bias
		p.depthStencil.DepthBiasSlope = slopeScale
	}
}

// WithMultiview sets the number of array layers rendered in one pass. Zero disables multiview.
//
// Parameters:
//   - layers: the number of views
//
// Returns:
//   - PipelineBuilderOption: a function that sets multiview for this pipeline
func WithMultiview(layers uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.multiview = layers
	}
}
