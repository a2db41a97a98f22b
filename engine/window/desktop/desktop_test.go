package desktop

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/engine/config"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestWindowOptions(t *testing.T) {
	w := newDesktopWindow()
	assert.Equal(t, "kopki", w.Title())
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Equal(t, glfw.DontCare, w.maxWidth)
	assert.True(t, w.resizable)
	assert.True(t, w.closeOnEsc)

	w = newDesktopWindow(
		WithTitle("shapes"),
		WithSize(800, 600),
		WithMinSize(320, 240),
		WithMaxSize(1920, 1080),
		WithResizable(false),
		WithCloseOnEscape(false),
	)
	assert.Equal(t, "shapes", w.Title())
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 1080, w.maxHeight)
	assert.False(t, w.resizable)
	assert.False(t, w.closeOnEsc)
}

func TestWindowFromConfig(t *testing.T) {
	cfg := config.Default().Window
	cfg.Title = "from file"
	cfg.Width = 640

	w := newDesktopWindow(WithConfig(cfg), WithResizable(false))
	assert.Equal(t, "from file", w.Title())
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.False(t, w.resizable)
}

func TestUnopenedWindow(t *testing.T) {
	w := newDesktopWindow()
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())

	updates := 0
	w.SetUpdateCallback(func() { updates++ })
	w.ProcessMessages()
	assert.Zero(t, updates)
}
