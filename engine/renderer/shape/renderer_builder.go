package shape

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// RendererBuilderOption is a functional option used to configure a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithLabel sets the label of the pipeline and batch buffers.
func WithLabel(label string) RendererBuilderOption {
	return func(r *renderer) {
		r.label = label
	}
}

// WithBlendMode sets how shapes combine with what is already drawn. The default replaces.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - RendererBuilderOption: a function that sets the blend mode for this Renderer
func WithBlendMode(mode backend.BlendMode) RendererBuilderOption {
	return func(r *renderer) {
		r.blend = mode
	}
}

// WithCapacity sets the initial vertex and index capacity of the batch mesh. Values below 1
// are raised to 1.
//
// Parameters:
//   - vertices: the initial vertex capacity
//   - indices: the initial index capacity
//
// Returns:
//   - RendererBuilderOption: a function that sets the capacity for this Renderer
func WithCapacity(vertices, indices int) RendererBuilderOption {
	return func(r *renderer) {
		r.vertexCap = max(vertices, 1)
		r.indexCap = max(indices, 1)
	}
}
