package framebuffer

import (
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/texture"
)

// FrameBufferBuilderOption is a functional option used to configure a FrameBuffer during construction.
type FrameBufferBuilderOption func(*frameBuffer)

// WithLabel sets the label prefix of every GPU object the FrameBuffer creates.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - FrameBufferBuilderOption: a function that sets the label for this FrameBuffer
func WithLabel(label string) FrameBufferBuilderOption {
	return func(fb *frameBuffer) {
		fb.label = label
	}
}

// WithFormat overrides the offscreen texture format. The default is RGBA8UnormSrgb whatever
// the surface reports.
//
// Parameters:
//   - format: a colour format
//
// Returns:
//   - FrameBufferBuilderOption: a function that sets the offscreen format for this FrameBuffer
func WithFormat(format backend.TextureFormat) FrameBufferBuilderOption {
	return func(fb *frameBuffer) {
		fb.format = format
	}
}

// WithCompositeClear sets the colour the surface image is cleared to before compositing.
// Only visible where the offscreen texture is transparent. Defaults to opaque black.
func WithCompositeClear(c backend.Color) FrameBufferBuilderOption {
	return func(fb *frameBuffer) {
		fb.clear = c
	}
}

// WithSamplerOptions appends options to the sampler used for compositing. The default samples
// with clamp to edge addressing, linear magnification and nearest minification.
func WithSamplerOptions(opts ...texture.SamplerBuilderOption) FrameBufferBuilderOption {
	return func(fb *frameBuffer) {
		fb.samplerOpts = append(fb.samplerOpts, opts...)
	}
}
