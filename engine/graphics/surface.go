package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// DefaultMaximumFrameLatency is the number of frames in flight requested when no latency option is given.
const DefaultMaximumFrameLatency uint32 = 2

// Surface is the presentable target of one window. It owns the swapchain configuration
// and reconfigures it in place on resize.
type Surface interface {
	// Format returns the pixel format selected for the swapchain.
	//
	// Returns:
	//   - backend.TextureFormat: the swapchain format
	Format() backend.TextureFormat

	// Width returns the configured swapchain width in pixels.
	Width() uint32

	// Height returns the configured swapchain height in pixels.
	Height() uint32

	// Configuration returns a copy of the current swapchain configuration.
	//
	// Returns:
	//   - backend.SurfaceConfiguration: the active configuration
	Configuration() backend.SurfaceConfiguration

	// Capabilities returns the formats, present modes and alpha modes the backend reported for this surface.
	//
	// Returns:
	//   - backend.SurfaceCapabilities: the reported capabilities
	Capabilities() backend.SurfaceCapabilities

	// Resize reconfigures the swapchain to the new size. A zero width or height is ignored and
	// leaves the configuration unchanged, since minimized windows report a zero size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: error if the backend rejects the new configuration
	Resize(width, height uint32) error

	// CurrentTexture acquires the swapchain image for the frame being rendered.
	//
	// Returns:
	//   - backend.Texture: the presentable image
	//   - error: error if the image cannot be acquired
	CurrentTexture() (backend.Texture, error)

	// Present presents the acquired image.
	//
	// Returns:
	//   - error: error if no image was acquired
	Present() error

	// Raw returns the backend surface.
	//
	// Returns:
	//   - backend.Surface: the underlying backend surface
	Raw() backend.Surface

	// Release releases the swapchain.
	Release()
}

type surface struct {
	ctx          *graphicsContext
	raw          backend.Surface
	capabilities backend.SurfaceCapabilities
	config       backend.SurfaceConfiguration

	presentMode  *backend.PresentMode
	frameLatency uint32
	format       *backend.TextureFormat
}

var _ Surface = &surface{}

// newSurface creates and configures a Surface. Format selection prefers the first sRGB
// format, present mode selection falls back to the first reported mode when the requested
// one is not supported, and the alpha mode is the first reported.
func newSurface(ctx *graphicsContext, target backend.SurfaceTarget, opts ...SurfaceBuilderOption) (*surface, error) {
	if target == nil {
		return nil, fmt.Errorf("surface target is nil: %w", common.ErrSurfaceConfigurationInvalid)
	}
	s := &surface{
		ctx:          ctx,
		frameLatency: DefaultMaximumFrameLatency,
	}
	for _, opt := range opts {
		opt(s)
	}

	width, height := target.Width(), target.Height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface target size %dx%d: %w", width, height, common.ErrSurfaceConfigurationInvalid)
	}

	raw, err := ctx.device.CreateSurface(target)
	if err != nil {
		return nil, err
	}
	s.raw = raw
	s.capabilities = raw.Capabilities()

	if len(s.capabilities.Formats) == 0 || len(s.capabilities.AlphaModes) == 0 {
		raw.Release()
		return nil, fmt.Errorf("surface reports no formats or alpha modes: %w", common.ErrSurfaceConfigurationInvalid)
	}

	s.config = backend.SurfaceConfiguration{
		Width:               uint32(width),
		Height:              uint32(height),
		Format:              s.selectFormat(),
		PresentMode:         s.selectPresentMode(),
		AlphaMode:           s.capabilities.AlphaModes[0],
		MaximumFrameLatency: max(s.frameLatency, 1),
	}
	if err := raw.Configure(s.config); err != nil {
		raw.Release()
		return nil, err
	}

	common.Logger().Debug("surface configured",
		"width", s.config.Width,
		"height", s.config.Height,
		"format", s.config.Format.String(),
		"present_mode", s.config.PresentMode.String(),
	)
	return s, nil
}

func (s *surface) selectFormat() backend.TextureFormat {
	if s.format != nil && common.Contains(s.capabilities.Formats, *s.format) {
		return *s.format
	}
	if s.format != nil {
		common.Logger().Warn("requested surface format unsupported", "format", s.format.String())
	}
	for _, f := range s.capabilities.Formats {
		if f.IsSRGB() {
			return f
		}
	}
	return s.capabilities.Formats[0]
}

func (s *surface) selectPresentMode() backend.PresentMode {
	if s.presentMode != nil {
		if common.Contains(s.capabilities.PresentModes, *s.presentMode) {
			return *s.presentMode
		}
		common.Logger().Warn("requested present mode unsupported", "present_mode", s.presentMode.String())
	}
	if len(s.capabilities.PresentModes) == 0 {
		return backend.PresentModeFifo
	}
	return s.capabilities.PresentModes[0]
}

func (s *surface) Format() backend.TextureFormat {
	return s.config.Format
}

func (s *surface) Width() uint32 {
	return s.config.Width
}

func (s *surface) Height() uint32 {
	return s.config.Height
}

func (s *surface) Configuration() backend.SurfaceConfiguration {
	return s.config
}

func (s *surface) Capabilities() backend.SurfaceCapabilities {
	return s.capabilities
}

func (s *surface) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	next := s.config
	next.Width = width
	next.Height = height
	if err := s.raw.Configure(next); err != nil {
		return err
	}
	s.config = next
	common.Logger().Debug("surface resized", "width", width, "height", height)
	return nil
}

func (s *surface) CurrentTexture() (backend.Texture, error) {
	return s.raw.CurrentTexture()
}

func (s *surface) Present() error {
	return s.raw.Present()
}

func (s *surface) Raw() backend.Surface {
	return s.raw
}

func (s *surface) Release() {
	if s.raw != nil {
		s.raw.Release()
		s.raw = nil
	}
}
