// Package app runs an Application against a window: it opens the graphics context, the
// surface and the framebuffer, then calls the application once per redraw and presents the
// frame it drew.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/config"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/profiler"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/kopki-go/engine/window"
)

// ErrNoWindow is returned by Run when no window was supplied.
var ErrNoWindow = errors.New("app: no window to run in")

// Context is what an Application sees of the running app. It is the graphics context plus
// the objects Run created around it.
type Context interface {
	graphics.GraphicsContext

	// Window returns the window the app runs in.
	Window() window.Window

	// Surface returns the surface presenting to the window.
	Surface() graphics.Surface

	// FrameBuffer returns the offscreen target every frame draws into. Pipelines drawn
	// in a Frame must target its format.
	FrameBuffer() framebuffer.FrameBuffer

	// Config returns the configuration the app was started with.
	Config() config.Config

	// Quit closes the window. The current frame is still presented.
	Quit()
}

// Application is implemented by programs driven by Run. Start builds the state once the
// context exists and Update draws one frame of it.
//
// If the state implements interface{ Release() }, Run releases it before the context.
type Application[S any] interface {
	// Start creates the application state.
	//
	// Parameters:
	//   - ctx: the running app
	//
	// Returns:
	//   - S: the state passed to every Update
	//   - error: error to abort Run with
	Start(ctx Context) (S, error)

	// Update draws one frame. Run presents the frame after Update returns.
	//
	// Parameters:
	//   - state: the state returned by Start
	//   - ctx: the running app
	//   - frame: the frame to draw into
	//
	// Returns:
	//   - error: error to stop Run with
	Update(state S, ctx Context, frame framebuffer.Frame) error
}

// Funcs adapts a pair of functions to the Application interface.
type Funcs[S any] struct {
	StartFunc  func(ctx Context) (S, error)
	UpdateFunc func(state S, ctx Context, frame framebuffer.Frame) error
}

var _ Application[int] = Funcs[int]{}

func (f Funcs[S]) Start(ctx Context) (S, error) {
	if f.StartFunc == nil {
		var zero S
		return zero, nil
	}
	return f.StartFunc(ctx)
}

func (f Funcs[S]) Update(state S, ctx Context, frame framebuffer.Frame) error {
	if f.UpdateFunc == nil {
		return nil
	}
	return f.UpdateFunc(state, ctx, frame)
}

type appContext struct {
	graphics.GraphicsContext

	window  window.Window
	surface graphics.Surface
	fb      framebuffer.FrameBuffer
	cfg     config.Config
}

var _ Context = &appContext{}

func (c *appContext) Window() window.Window                { return c.window }
func (c *appContext) Surface() graphics.Surface            { return c.surface }
func (c *appContext) FrameBuffer() framebuffer.FrameBuffer { return c.fb }
func (c *appContext) Config() config.Config                { return c.cfg }

func (c *appContext) Quit() {
	if err := c.window.Close(); err != nil {
		common.Logger().Warn("failed to close window", "window", c.window.Title(), "error", err)
	}
}

type runner struct {
	cfg             config.Config
	window          window.Window
	backendType     *backend.BackendType
	presentMode     *backend.PresentMode
	profiling       *bool
	profilerOpts    []profiler.ProfilerBuilderOption
	frameBufferOpts []framebuffer.FrameBufferBuilderOption
	logger          *slog.Logger
}

func newRunner(opts []RunBuilderOption) *runner {
	r := &runner{cfg: config.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens a graphics context, a surface on the window and a framebuffer, starts the
// application and runs the window's message loop until the window closes or Update fails.
// Everything Run created is released before it returns.
//
// Window resizes are applied to the surface and the framebuffer before the next frame, so
// a window may resize from inside Update.
//
// Parameters:
//   - a: the application to run
//   - opts: functional options; WithWindow is required
//
// Returns:
//   - error: the first error from setup, Start, Update or presentation
func Run[S any](a Application[S], opts ...RunBuilderOption) error {
	return newRunner(opts).run(runFunc(a))
}

// RunHeadless runs the application in a headless window for a fixed number of frames. The
// window takes its title and size from the configuration and the software backend is used
// unless WithBackend selects another one. A window passed with WithWindow replaces the
// headless one and frames is ignored.
//
// Parameters:
//   - a: the application to run
//   - frames: the number of frames to draw; zero runs until the application calls Quit
//   - opts: functional options
//
// Returns:
//   - error: the first error from setup, Start, Update or presentation
func RunHeadless[S any](a Application[S], frames uint64, opts ...RunBuilderOption) error {
	software := backend.BackendTypeSoftware
	r := newRunner(append([]RunBuilderOption{func(r *runner) { r.backendType = &software }}, opts...))
	if r.window == nil {
		r.window = window.NewHeadless(
			window.WithTitle(r.cfg.Window.Title),
			window.WithSize(r.cfg.Window.Width, r.cfg.Window.Height),
			window.WithFrameLimit(frames),
		)
	}
	return r.run(runFunc(a))
}

// session is the per-run state shared by the window callbacks.
type session struct {
	ctx      *appContext
	profiler *profiler.Profiler
	pending  *[2]int
	err      error
}

type stepFunc func(ctx *appContext) (update func(framebuffer.Frame) error, release func(), err error)

// runFunc erases the state type so the runner is not generic.
func runFunc[S any](a Application[S]) stepFunc {
	return func(ctx *appContext) (func(framebuffer.Frame) error, func(), error) {
		state, err := a.Start(ctx)
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			if r, ok := any(state).(interface{ Release() }); ok {
				r.Release()
			}
		}
		return func(frame framebuffer.Frame) error { return a.Update(state, ctx, frame) }, release, nil
	}
}

func (r *runner) run(start stepFunc) error {
	if r.window == nil {
		return ErrNoWindow
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	if err := r.installLogger(); err != nil {
		return err
	}
	log := common.Logger()

	gctx, err := graphics.NewGraphicsContext(r.contextOptions()...)
	if err != nil {
		return err
	}
	defer gctx.Release()

	surfaceOpts, err := r.surfaceOptions()
	if err != nil {
		return err
	}
	surface, err := gctx.CreateSurface(r.window, surfaceOpts...)
	if err != nil {
		return err
	}
	defer surface.Release()

	fb, err := framebuffer.NewFrameBuffer(gctx, surface, r.frameBufferOpts...)
	if err != nil {
		return err
	}
	defer fb.Release()

	s := &session{
		ctx: &appContext{
			GraphicsContext: gctx,
			window:          r.window,
			surface:         surface,
			fb:              fb,
			cfg:             r.cfg,
		},
	}
	if s.profiler, err = r.newProfiler(); err != nil {
		return err
	}

	update, release, err := start(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to start %q: %w", r.window.Title(), err)
	}
	defer release()

	r.window.SetResizeCallback(func(width, height int) {
		s.pending = &[2]int{width, height}
	})
	r.window.SetUpdateCallback(func() {
		if s.err != nil {
			return
		}
		if err := s.frame(update); err != nil {
			s.err = err
			s.ctx.Quit()
		}
	})

	log.Debug("app started", "window", r.window.Title(), "backend", gctx.Type().String(),
		"width", fb.Width(), "height", fb.Height())
	r.window.ProcessMessages()
	if r.window.IsRunning() {
		s.ctx.Quit()
	}
	log.Debug("app stopped", "window", r.window.Title(), "error", s.err)
	return s.err
}

// frame applies a pending resize, then draws and presents one frame. Frames are skipped
// while the window has no area.
func (s *session) frame(update func(framebuffer.Frame) error) error {
	if s.pending != nil {
		size := *s.pending
		s.pending = nil
		if err := s.resize(size[0], size[1]); err != nil {
			return err
		}
	}
	if s.ctx.window.Width() <= 0 || s.ctx.window.Height() <= 0 {
		return nil
	}

	frame, err := s.ctx.fb.Frame()
	if err != nil {
		return err
	}
	if err := update(frame); err != nil {
		frame.Release()
		return fmt.Errorf("update failed: %w", err)
	}
	if err := s.ctx.fb.Present(frame); err != nil {
		return err
	}
	if s.profiler != nil {
		s.profiler.Tick()
	}
	return nil
}

func (s *session) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	w, h := uint32(width), uint32(height)
	if err := s.ctx.surface.Resize(w, h); err != nil {
		return fmt.Errorf("failed to resize surface: %w", err)
	}
	if err := s.ctx.fb.Resize(w, h); err != nil {
		return fmt.Errorf("failed to resize framebuffer: %w", err)
	}
	if s.profiler != nil {
		s.profiler.Reset()
	}
	return nil
}

func (r *runner) installLogger() error {
	if r.logger != nil {
		common.SetLogger(r.logger)
		return nil
	}
	level, err := r.cfg.Level()
	if err != nil {
		return err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (r *runner) contextOptions() []graphics.GraphicsContextBuilderOption {
	bt, _ := r.cfg.BackendType()
	if r.backendType != nil {
		bt = *r.backendType
	}
	opts := []graphics.GraphicsContextBuilderOption{
		graphics.WithBackend(bt),
		graphics.WithLabel(r.cfg.Window.Title),
		graphics.WithForceFallbackAdapter(r.cfg.Graphics.ForceFallbackAdapter),
		graphics.WithShaderValidation(r.cfg.Graphics.ShaderValidation),
	}
	if r.cfg.Graphics.RasterWorkers > 0 {
		opts = append(opts, graphics.WithRasterWorkers(r.cfg.Graphics.RasterWorkers))
	}
	return opts
}

func (r *runner) surfaceOptions() ([]graphics.SurfaceBuilderOption, error) {
	mode, err := r.cfg.PresentMode()
	if err != nil {
		return nil, err
	}
	if r.presentMode != nil {
		mode = *r.presentMode
	}
	return []graphics.SurfaceBuilderOption{graphics.WithPresentMode(mode)}, nil
}

func (r *runner) newProfiler() (*profiler.Profiler, error) {
	enabled := r.cfg.Profiler.Enabled
	if r.profiling != nil {
		enabled = *r.profiling
	}
	if !enabled {
		return nil, nil
	}
	interval, err := r.cfg.ProfilerInterval()
	if err != nil {
		return nil, err
	}
	opts := append([]profiler.ProfilerBuilderOption{
		profiler.WithInterval(interval),
		profiler.WithLabel(r.cfg.Window.Title),
	}, r.profilerOpts...)
	return profiler.NewProfiler(opts...), nil
}
