package texture

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// TextureBuilderOption is a functional option used to configure a Texture2D during construction.
type TextureBuilderOption func(*texture2D)

// WithUsage adds usages to the texture. Textures are always usable as a binding and as a copy destination.
//
// Parameters:
//   - usage: the extra usage bits, such as backend.TextureUsageRenderAttachment
//
// Returns:
//   - TextureBuilderOption: a function that adds the usage to this texture
func WithUsage(usage backend.TextureUsage) TextureBuilderOption {
	return func(t *texture2D) {
		t.usage |= usage
	}
}

// WithSRGB selects whether textures decoded from images are sRGB encoded. It defaults to true
// and has no effect on NewTexture2D, which takes an explicit format.
//
// Parameters:
//   - srgb: true for RGBA8UnormSrgb, false for RGBA8Unorm
//
// Returns:
//   - TextureBuilderOption: a function that sets the colour encoding for this texture
func WithSRGB(srgb bool) TextureBuilderOption {
	return func(t *texture2D) {
		t.srgb = srgb
	}
}
