package app

import (
	"log/slog"

	"github.com/Carmen-Shannon/kopki-go/engine/config"
	"github.com/Carmen-Shannon/kopki-go/engine/profiler"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/kopki-go/engine/window"
)

// RunBuilderOption is a functional option for Run and RunHeadless.
type RunBuilderOption func(*runner)

// WithWindow sets the window the app runs in.
//
// Parameters:
//   - w: the window, already open
//
// Returns:
//   - RunBuilderOption: option function to apply
func WithWindow(w window.Window) RunBuilderOption {
	return func(r *runner) {
		r.window = w
	}
}

// WithConfig replaces the default configuration. Options given after it still override
// the matching configuration fields.
//
// Parameters:
//   - cfg: the configuration, usually from config.Load
//
// Returns:
//   - RunBuilderOption: option function to apply
func WithConfig(cfg config.Config) RunBuilderOption {
	return func(r *runner) {
		r.cfg = cfg
	}
}

// WithBackend overrides the configured backend.
func WithBackend(t backend.BackendType) RunBuilderOption {
	return func(r *runner) {
		r.backendType = &t
	}
}

// WithPresentMode overrides the configured present mode.
func WithPresentMode(mode backend.PresentMode) RunBuilderOption {
	return func(r *runner) {
		r.presentMode = &mode
	}
}

// WithProfiling overrides whether frame statistics are logged.
//
// Parameters:
//   - enabled: true to log frame statistics at the configured interval
//   - opts: extra profiler options, applied after the configured interval
//
// Returns:
//   - RunBuilderOption: option function to apply
func WithProfiling(enabled bool, opts ...profiler.ProfilerBuilderOption) RunBuilderOption {
	return func(r *runner) {
		r.profiling = &enabled
		r.profilerOpts = append(r.profilerOpts, opts...)
	}
}

// WithFrameBufferOptions passes options to the framebuffer, such as its offscreen format.
func WithFrameBufferOptions(opts ...framebuffer.FrameBufferBuilderOption) RunBuilderOption {
	return func(r *runner) {
		r.frameBufferOpts = append(r.frameBufferOpts, opts...)
	}
}

// WithLogger installs l as the module logger instead of a text handler on stderr at the
// configured level.
func WithLogger(l *slog.Logger) RunBuilderOption {
	return func(r *runner) {
		r.logger = l
	}
}
