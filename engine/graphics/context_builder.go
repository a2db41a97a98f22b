package graphics

import "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"

// GraphicsContextBuilderOption is a functional option applied to a context during construction via NewGraphicsContext.
type GraphicsContextBuilderOption func(*graphicsContext)

// WithBackend selects the backend to open. The default is backend.BackendTypeWGPU.
//
// Parameters:
//   - t: the backend type
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the backend option to a context
func WithBackend(t backend.BackendType) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.backendType = t
	}
}

// WithForceFallbackAdapter forces the GPU backend to pick a software fallback adapter.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the fallback adapter option to a context
func WithForceFallbackAdapter(force bool) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.backendOptions = append(c.backendOptions, backend.WithForceFallbackAdapter(force))
	}
}

// WithRasterWorkers sets the worker count of the software backend. Values below one are raised to one.
//
// Parameters:
//   - workers: the number of row bands rasterized in parallel
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the raster workers option to a context
func WithRasterWorkers(workers int) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.backendOptions = append(c.backendOptions, backend.WithRasterWorkers(workers))
	}
}

// WithMaxBindGroups sets the number of resource groups a pipeline may use.
//
// Parameters:
//   - n: the bind group limit requested from the device
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the bind group limit to a context
func WithMaxBindGroups(n uint32) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.backendOptions = append(c.backendOptions, backend.WithMaxBindGroups(n))
	}
}

// WithShaderValidation enables WGSL validation before pipelines are compiled.
//
// Parameters:
//   - enabled: true to validate shader source
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the shader validation option to a context
func WithShaderValidation(enabled bool) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.shaderValidation = enabled
	}
}

// WithLabel sets the debug label of the device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - GraphicsContextBuilderOption: a function that applies the label option to a context
func WithLabel(label string) GraphicsContextBuilderOption {
	return func(c *graphicsContext) {
		c.backendOptions = append(c.backendOptions, backend.WithLabel(label))
	}
}
