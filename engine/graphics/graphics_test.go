package graphics

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sizedTarget struct {
	w, h int
}

func (t sizedTarget) Width() int  { return t.w }
func (t sizedTarget) Height() int { return t.h }

func newSoftwareContext(t *testing.T) GraphicsContext {
	t.Helper()
	ctx, err := NewGraphicsContext(WithBackend(backend.BackendTypeSoftware), WithRasterWorkers(1))
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func TestNewGraphicsContextUnregisteredBackend(t *testing.T) {
	_, err := NewGraphicsContext(WithBackend(backend.BackendType(99)))
	assert.ErrorIs(t, err, common.ErrDeviceUnavailable)
}

func TestNewGraphicsContextSoftware(t *testing.T) {
	ctx := newSoftwareContext(t)
	assert.Equal(t, backend.BackendTypeSoftware, ctx.Type())
	assert.Equal(t, backend.BackendTypeSoftware, ctx.Backend().Type())
	assert.False(t, ctx.ShaderValidation())
}

func TestCreateSurfaceDefaults(t *testing.T) {
	ctx := newSoftwareContext(t)

	s, err := ctx.CreateSurface(sizedTarget{800, 600})
	require.NoError(t, err)
	defer s.Release()

	cfg := s.Configuration()
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(600), cfg.Height)
	assert.True(t, cfg.Format.IsSRGB(), "expected an sRGB format, got %s", cfg.Format)
	assert.Equal(t, backend.PresentModeFifo, cfg.PresentMode)
	assert.Equal(t, s.Capabilities().AlphaModes[0], cfg.AlphaMode)
	assert.Equal(t, DefaultMaximumFrameLatency, cfg.MaximumFrameLatency)
}

func TestCreateSurfaceOptions(t *testing.T) {
	ctx := newSoftwareContext(t)

	s, err := ctx.CreateSurface(sizedTarget{64, 32},
		WithPresentMode(backend.PresentModeImmediate),
		WithMaximumFrameLatency(0),
		WithSurfaceFormat(backend.TextureFormatRGBA8Unorm),
	)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, backend.PresentModeImmediate, s.Configuration().PresentMode)
	assert.Equal(t, uint32(1), s.Configuration().MaximumFrameLatency)
	assert.Equal(t, backend.TextureFormatRGBA8Unorm, s.Format())
}

func TestCreateSurfaceZeroSize(t *testing.T) {
	ctx := newSoftwareContext(t)

	_, err := ctx.CreateSurface(sizedTarget{0, 600})
	assert.ErrorIs(t, err, common.ErrSurfaceConfigurationInvalid)

	_, err = ctx.CreateSurface(nil)
	assert.ErrorIs(t, err, common.ErrSurfaceConfigurationInvalid)
}

func TestSurfaceResizeZeroIsIgnored(t *testing.T) {
	ctx := newSoftwareContext(t)

	s, err := ctx.CreateSurface(sizedTarget{800, 600})
	require.NoError(t, err)
	defer s.Release()

	before := s.Configuration()
	require.NoError(t, s.Resize(0, 300))
	require.NoError(t, s.Resize(400, 0))
	assert.Equal(t, before, s.Configuration())

	require.NoError(t, s.Resize(400, 300))
	assert.Equal(t, uint32(400), s.Width())
	assert.Equal(t, uint32(300), s.Height())

	tex, err := s.CurrentTexture()
	require.NoError(t, err)
	assert.Equal(t, uint32(400), tex.Width())
	assert.Equal(t, uint32(300), tex.Height())
	assert.NoError(t, s.Present())
}

func TestSurfacePresentWithoutAcquire(t *testing.T) {
	ctx := newSoftwareContext(t)

	s, err := ctx.CreateSurface(sizedTarget{8, 8})
	require.NoError(t, err)
	defer s.Release()

	assert.Error(t, s.Present())
}

func TestPresentModeFallsBackToFirstReported(t *testing.T) {
	immediate := backend.PresentModeImmediate
	s := &surface{
		capabilities: backend.SurfaceCapabilities{PresentModes: []backend.PresentMode{backend.PresentModeFifo}},
		presentMode:  &immediate,
	}
	assert.Equal(t, backend.PresentModeFifo, s.selectPresentMode())

	s.capabilities.PresentModes = []backend.PresentMode{backend.PresentModeImmediate, backend.PresentModeFifo}
	assert.Equal(t, backend.PresentModeImmediate, s.selectPresentMode())
}
