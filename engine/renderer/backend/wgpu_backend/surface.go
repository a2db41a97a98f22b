package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

type surface struct {
	handle
	surface *wgpu.Surface
	config  *backend.SurfaceConfiguration
	current *texture
}

var _ backend.Surface = &surface{}

func (s *surface) Capabilities() backend.SurfaceCapabilities {
	return fromSurfaceCapabilities(s.surface.GetCapabilities(s.owner.adapter))
}

func (s *surface) Configure(cfg backend.SurfaceConfiguration) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("surface size %dx%d: %w", cfg.Width, cfg.Height, common.ErrSurfaceConfigurationInvalid)
	}
	if cfg.MaximumFrameLatency == 0 {
		return fmt.Errorf("maximum frame latency must be at least 1: %w", common.ErrSurfaceConfigurationInvalid)
	}
	if err := checkConfiguration(s.Capabilities(), cfg); err != nil {
		return err
	}

	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.surface.Configure(s.owner.adapter, s.owner.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      toTextureFormat(cfg.Format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: toPresentMode(cfg.PresentMode),
		AlphaMode:   toAlphaMode(cfg.AlphaMode),
	})
	s.config = &cfg
	return nil
}

// checkConfiguration rejects formats and modes the surface did not report.
func checkConfiguration(caps backend.SurfaceCapabilities, cfg backend.SurfaceConfiguration) error {
	if !common.Contains(caps.Formats, cfg.Format) {
		return fmt.Errorf("surface format %s is not supported: %w", cfg.Format, common.ErrSurfaceConfigurationInvalid)
	}
	if !common.Contains(caps.PresentModes, cfg.PresentMode) {
		return fmt.Errorf("present mode %s is not supported: %w", cfg.PresentMode, common.ErrSurfaceConfigurationInvalid)
	}
	if !common.Contains(caps.AlphaModes, cfg.AlphaMode) {
		return fmt.Errorf("alpha mode %d is not supported: %w", cfg.AlphaMode, common.ErrSurfaceConfigurationInvalid)
	}
	return nil
}

func (s *surface) CurrentTexture() (backend.Texture, error) {
	if s.config == nil {
		return nil, fmt.Errorf("surface is not configured: %w", common.ErrSurfaceConfigurationInvalid)
	}
	if s.current != nil {
		return s.current, nil
	}

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	s.current = &texture{
		handle: handle{owner: s.owner, label: "surface texture", release: tex.Release},
		tex:    tex,
		width:  s.config.Width,
		height: s.config.Height,
		format: s.config.Format,
		usage:  backend.TextureUsageRenderAttachment,
	}
	return s.current, nil
}

func (s *surface) Present() error {
	if s.current == nil {
		return fmt.Errorf("no surface texture has been acquired")
	}
	s.surface.Present()
	s.current.Release()
	s.current = nil
	return nil
}
