package app

import (
	"bytes"
	"errors"
	"image/color"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/config"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/shape"
	"github.com/Carmen-Shannon/kopki-go/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blue = backend.Color{B: 1, A: 1}
	red  = color.RGBA{R: 255, A: 255}
)

type shapesState struct {
	shapes   shape.Renderer
	frames   int
	pixels   []byte
	presents uint64
	released bool
}

func (s *shapesState) Release() {
	s.shapes.Release()
	s.released = true
}

func quiet(t *testing.T) RunBuilderOption {
	t.Helper()
	t.Cleanup(func() { common.SetLogger(nil) })
	return WithLogger(slog.New(slog.DiscardHandler))
}

func smallConfig(width, height int) config.Config {
	cfg := config.Default()
	cfg.Window.Title = "test"
	cfg.Window.Width = width
	cfg.Window.Height = height
	return cfg
}

// shapesApp draws a red square on blue and records what the previous frame left behind.
func shapesApp(t *testing.T, state **shapesState) Funcs[*shapesState] {
	return Funcs[*shapesState]{
		StartFunc: func(ctx Context) (*shapesState, error) {
			r, err := shape.NewRenderer(ctx, ctx.FrameBuffer())
			if err != nil {
				return nil, err
			}
			*state = &shapesState{shapes: r}
			return *state, nil
		},
		UpdateFunc: func(s *shapesState, ctx Context, frame framebuffer.Frame) error {
			s.frames++
			if s.frames > 1 {
				px, err := software_backend.ReadPixels(ctx.Backend(), ctx.FrameBuffer().Texture())
				require.NoError(t, err)
				s.pixels = px
				s.presents, _ = software_backend.PresentCount(ctx.Surface().Raw())
			}
			list, err := s.shapes.Draw(frame.Width(), frame.Height(), shape.Rect{W: 4, H: 4, Color: red})
			if err != nil {
				return err
			}
			return frame.DrawWithClear(blue, list)
		},
	}
}

func TestRunHeadlessDrawsAndPresents(t *testing.T) {
	var state *shapesState
	err := RunHeadless(shapesApp(t, &state), 2, WithConfig(smallConfig(8, 8)), quiet(t))
	require.NoError(t, err)

	require.NotNil(t, state)
	assert.Equal(t, 2, state.frames)
	assert.True(t, state.released)
	assert.Equal(t, uint64(1), state.presents)

	require.Len(t, state.pixels, 8*8*4)
	at := func(x, y int) []byte {
		i := (y*8 + x) * 4
		return state.pixels[i : i+4]
	}
	assert.Equal(t, []byte{255, 0, 0, 255}, at(1, 1))
	assert.Equal(t, []byte{0, 0, 255, 255}, at(6, 6))
}

func TestRunAppliesResizeBeforeNextFrame(t *testing.T) {
	var sizes [][4]uint32
	a := Funcs[struct{}]{
		UpdateFunc: func(_ struct{}, ctx Context, frame framebuffer.Frame) error {
			sizes = append(sizes, [4]uint32{frame.Width(), frame.Height(), ctx.Surface().Width(), ctx.Surface().Height()})
			if len(sizes) == 1 {
				return ctx.Window().(window.Headless).Resize(4, 2)
			}
			return nil
		},
	}
	require.NoError(t, RunHeadless[struct{}](a, 3, WithConfig(smallConfig(8, 8)), quiet(t)))
	assert.Equal(t, [][4]uint32{{8, 8, 8, 8}, {4, 2, 4, 2}, {4, 2, 4, 2}}, sizes)
}

func TestRunSkipsFramesWithoutArea(t *testing.T) {
	frames := 0
	w := window.NewHeadless(window.WithSize(8, 8), window.WithFrameLimit(4))
	a := Funcs[struct{}]{
		UpdateFunc: func(_ struct{}, ctx Context, _ framebuffer.Frame) error {
			frames++
			return w.Resize(0, 0)
		},
	}
	require.NoError(t, Run[struct{}](a, WithWindow(w), WithBackend(backend.BackendTypeSoftware), quiet(t)))
	assert.Equal(t, 1, frames)
	assert.Equal(t, uint64(4), w.Frames())
}

func TestRunStopsOnUpdateError(t *testing.T) {
	boom := errors.New("boom")
	w := window.NewHeadless(window.WithSize(8, 8))
	frames := 0
	a := Funcs[int]{
		StartFunc: func(Context) (int, error) { return 7, nil },
		UpdateFunc: func(state int, _ Context, _ framebuffer.Frame) error {
			assert.Equal(t, 7, state)
			frames++
			if frames == 2 {
				return boom
			}
			return nil
		},
	}
	err := Run[int](a, WithWindow(w), WithBackend(backend.BackendTypeSoftware), quiet(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, frames)
	assert.False(t, w.IsRunning())
}

func TestRunStartError(t *testing.T) {
	boom := errors.New("no assets")
	updated := false
	a := Funcs[int]{
		StartFunc:  func(Context) (int, error) { return 0, boom },
		UpdateFunc: func(int, Context, framebuffer.Frame) error { updated = true; return nil },
	}
	err := RunHeadless[int](a, 3, WithConfig(smallConfig(8, 8)), quiet(t))
	assert.ErrorIs(t, err, boom)
	assert.False(t, updated)
}

func TestRunQuitFromUpdate(t *testing.T) {
	frames := 0
	a := Funcs[struct{}]{
		UpdateFunc: func(_ struct{}, ctx Context, _ framebuffer.Frame) error {
			frames++
			if frames == 3 {
				ctx.Quit()
			}
			return nil
		},
	}
	require.NoError(t, RunHeadless[struct{}](a, 0, WithConfig(smallConfig(8, 8)), quiet(t)))
	assert.Equal(t, 3, frames)
}

func TestRunValidatesSetup(t *testing.T) {
	a := Funcs[struct{}]{}
	assert.ErrorIs(t, Run[struct{}](a, quiet(t)), ErrNoWindow)

	cfg := smallConfig(8, 8)
	cfg.Graphics.PresentMode = "mailbox"
	assert.ErrorIs(t, RunHeadless[struct{}](a, 1, WithConfig(cfg), quiet(t)), config.ErrInvalidConfig)
}

func TestRunLogsFrameStats(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { common.SetLogger(nil) })

	cfg := smallConfig(8, 8)
	cfg.Profiler.Interval = "1ns"
	err := RunHeadless[struct{}](Funcs[struct{}]{}, 2,
		WithConfig(cfg),
		WithProfiling(true),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "source=test")
}
