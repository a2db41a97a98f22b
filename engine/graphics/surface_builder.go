package graphics

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// SurfaceBuilderOption is a functional option applied to a surface during construction via CreateSurface.
type SurfaceBuilderOption func(*surface)

// WithPresentMode requests a present mode. If the surface does not support it, the first
// reported mode is used instead.
//
// Parameters:
//   - mode: the requested present mode
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the present mode option to a surface
func WithPresentMode(mode backend.PresentMode) SurfaceBuilderOption {
	return func(s *surface) {
		s.presentMode = &mode
	}
}

// WithMaximumFrameLatency sets the desired number of frames in flight. Values below one are raised to one.
//
// Parameters:
//   - frames: the desired frame latency
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the frame latency option to a surface
func WithMaximumFrameLatency(frames uint32) SurfaceBuilderOption {
	return func(s *surface) {
		s.frameLatency = max(frames, 1)
	}
}

// WithSurfaceFormat requests a swapchain format in place of the default sRGB selection.
//
// Parameters:
//   - format: the requested format
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the format option to a surface
func WithSurfaceFormat(format backend.TextureFormat) SurfaceBuilderOption {
	return func(s *surface) {
		s.format = &format
	}
}
