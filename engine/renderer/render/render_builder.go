package render

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// RenderBuilderOption is a functional option used to configure the pass opened by Render and RenderTo.
type RenderBuilderOption func(*renderPass)

// WithPassLabel sets the debug label of the pass and its command buffer.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - RenderBuilderOption: a function that sets the label
func WithPassLabel(label string) RenderBuilderOption {
	return func(p *renderPass) {
		p.label = label
	}
}

// WithLoad keeps the existing contents of the colour attachment instead of clearing it.
//
// Returns:
//   - RenderBuilderOption: a function that sets the load operation
func WithLoad() RenderBuilderOption {
	return func(p *renderPass) {
		p.load = backend.LoadOpLoad
	}
}

// WithDepthAttachment adds a depth attachment cleared to clearValue. Required by pipelines
// created with depth testing.
//
// Parameters:
//   - view: a view of a depth texture the same size as the colour attachment
//   - clearValue: the depth the attachment is cleared to, usually 1
//
// Returns:
//   - RenderBuilderOption: a function that sets the depth attachment
func WithDepthAttachment(view backend.TextureView, clearValue float32) RenderBuilderOption {
	return func(p *renderPass) {
		p.depth = view
		p.depthClear = clearValue
		p.depthLoad = backend.LoadOpClear
	}
}
