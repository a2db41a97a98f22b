package software_backend

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// surface is an offscreen swapchain with a single persistent image. Presenting keeps the
// image contents, so tests can read back the last presented frame.
type surface struct {
	resource
	config   *backend.SurfaceConfiguration
	image    *texture
	acquired bool
	presents uint64
}

var _ backend.Surface = &surface{}

var surfaceCapabilities = backend.SurfaceCapabilities{
	Formats: []backend.TextureFormat{
		backend.TextureFormatBGRA8UnormSrgb,
		backend.TextureFormatBGRA8Unorm,
		backend.TextureFormatRGBA8UnormSrgb,
		backend.TextureFormatRGBA8Unorm,
	},
	PresentModes: []backend.PresentMode{backend.PresentModeFifo, backend.PresentModeImmediate},
	AlphaModes:   []backend.AlphaMode{backend.AlphaModeOpaque, backend.AlphaModePremultiplied},
}

func (s *surface) Capabilities() backend.SurfaceCapabilities {
	return backend.SurfaceCapabilities{
		Formats:      slices.Clone(surfaceCapabilities.Formats),
		PresentModes: slices.Clone(surfaceCapabilities.PresentModes),
		AlphaModes:   slices.Clone(surfaceCapabilities.AlphaModes),
	}
}

func (s *surface) Configure(cfg backend.SurfaceConfiguration) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("surface size %dx%d: %w", cfg.Width, cfg.Height, common.ErrSurfaceConfigurationInvalid)
	}
	if !slices.Contains(surfaceCapabilities.Formats, cfg.Format) {
		return fmt.Errorf("surface format %s is not supported: %w", cfg.Format, common.ErrSurfaceConfigurationInvalid)
	}
	if !slices.Contains(surfaceCapabilities.PresentModes, cfg.PresentMode) {
		return fmt.Errorf("present mode %s is not supported: %w", cfg.PresentMode, common.ErrSurfaceConfigurationInvalid)
	}
	if cfg.MaximumFrameLatency == 0 {
		return fmt.Errorf("frame latency must be at least 1: %w", common.ErrSurfaceConfigurationInvalid)
	}

	img, err := s.owner.CreateTexture(backend.TextureDescriptor{
		Label:  "software surface image",
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: cfg.Format,
		Usage:  backend.TextureUsageRenderAttachment | backend.TextureUsageCopySrc,
	})
	if err != nil {
		return err
	}
	if s.image != nil {
		s.image.Release()
	}
	s.image = img.(*texture)
	s.config = &cfg
	s.acquired = false
	return nil
}

func (s *surface) CurrentTexture() (backend.Texture, error) {
	if s.config == nil {
		return nil, fmt.Errorf("surface is not configured: %w", common.ErrSurfaceConfigurationInvalid)
	}
	s.acquired = true
	return s.image, nil
}

func (s *surface) Present() error {
	if !s.acquired {
		return fmt.Errorf("present without an acquired surface texture")
	}
	s.acquired = false
	s.presents++
	return nil
}

// PresentCount returns how many frames a software surface has presented. Surfaces from
// other backends report false.
//
// Parameters:
//   - s: the surface
//
// Returns:
//   - uint64: the number of presents
//   - bool: true if s is a software surface
func PresentCount(s backend.Surface) (uint64, bool) {
	ss, ok := s.(*surface)
	if !ok {
		return 0, false
	}
	return ss.presents, true
}
