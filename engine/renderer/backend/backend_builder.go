package backend

import "runtime"

// Options are the settings passed to a Driver when a Backend is opened.
type Options struct {
	// Label names the device in debug output.
	Label string

	// ForceFallbackAdapter asks the GPU backend for a CPU/software adapter instead of hardware.
	ForceFallbackAdapter bool

	// RasterWorkers is the number of goroutines the software backend rasterizes with.
	RasterWorkers int

	// MaxBindGroups is the number of bind groups a pipeline may use.
	MaxBindGroups uint32
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Label:         "kopki device",
		RasterWorkers: runtime.GOMAXPROCS(0),
		MaxBindGroups: 4,
	}
}

// BackendBuilderOption is a functional option applied to Options by Open.
type BackendBuilderOption func(*Options)

// WithLabel sets the device debug label.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - BackendBuilderOption: a function that applies the label option
func WithLabel(label string) BackendBuilderOption {
	return func(o *Options) {
		o.Label = label
	}
}

// WithForceFallbackAdapter requests a software fallback adapter from the GPU backend.
// This requires a software ICD (e.g. SwiftShader or lavapipe) on the system.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - BackendBuilderOption: a function that applies the fallback option
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(o *Options) {
		o.ForceFallbackAdapter = force
	}
}

// WithRasterWorkers sets the software rasterizer parallelism. Values below 1 are clamped to 1.
//
// Parameters:
//   - workers: the number of raster goroutines
//
// Returns:
//   - BackendBuilderOption: a function that applies the worker count option
func WithRasterWorkers(workers int) BackendBuilderOption {
	return func(o *Options) {
		o.RasterWorkers = max(workers, 1)
	}
}

// WithMaxBindGroups raises the per-pipeline bind group limit requested from the device.
//
// Parameters:
//   - n: the bind group limit
//
// Returns:
//   - BackendBuilderOption: a function that applies the limit option
func WithMaxBindGroups(n uint32) BackendBuilderOption {
	return func(o *Options) {
		if n > 0 {
			o.MaxBindGroups = n
		}
	}
}
