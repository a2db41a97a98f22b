// Package graphics owns the GPU session: the GraphicsContext that every resource is created
// through, and the Surface that presents frames to a window.
//
// Backends become available by importing their packages, for example
//
//	import _ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/wgpu_backend"
//
// There is no process-wide context. Every constructor in the renderer packages takes the
// GraphicsContext it creates resources on.
package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// GraphicsContext owns one opened backend device and its submission queue.
// It is created once at startup and released at shutdown.
type GraphicsContext interface {
	// Backend returns the opened backend that resources are created on.
	//
	// Returns:
	//   - backend.Backend: the backend owned by this context
	Backend() backend.Backend

	// Type returns the type of the opened backend.
	//
	// Returns:
	//   - backend.BackendType: the backend type
	Type() backend.BackendType

	// ShaderValidation reports whether pipelines validate WGSL source before compiling it.
	//
	// Returns:
	//   - bool: true if shader validation is enabled
	ShaderValidation() bool

	// CreateSurface creates a presentable Surface bound to the given window and configures it
	// immediately at the window's current size.
	//
	// Parameters:
	//   - target: the window to present to
	//   - opts: surface options such as the requested present mode
	//
	// Returns:
	//   - Surface: the configured surface
	//   - error: error wrapping common.ErrSurfaceConfigurationInvalid if the window is zero sized or unsupported
	CreateSurface(target backend.SurfaceTarget, opts ...SurfaceBuilderOption) (Surface, error)

	// Submit submits finished command buffers to the queue.
	//
	// Parameters:
	//   - buffers: the command buffers to submit, in order
	//
	// Returns:
	//   - error: error if a command buffer belongs to another backend or fails to execute
	Submit(buffers ...backend.CommandBuffer) error

	// Release releases the device and the backend instance.
	Release()
}

type graphicsContext struct {
	backendType      backend.BackendType
	backendOptions   []backend.BackendBuilderOption
	shaderValidation bool

	device backend.Backend
}

var _ GraphicsContext = &graphicsContext{}

// NewGraphicsContext opens a backend, selects an adapter and creates the device and queue.
// It blocks until the device is available.
//
// Parameters:
//   - opts: functional options, see the With* functions in this package
//
// Returns:
//   - GraphicsContext: the opened context
//   - error: error wrapping common.ErrDeviceUnavailable if no compatible device is available
func NewGraphicsContext(opts ...GraphicsContextBuilderOption) (GraphicsContext, error) {
	c := &graphicsContext{
		backendType: backend.BackendTypeWGPU,
	}
	for _, opt := range opts {
		opt(c)
	}

	device, err := backend.Open(c.backendType, c.backendOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}
	c.device = device
	return c, nil
}

func (c *graphicsContext) Backend() backend.Backend {
	return c.device
}

func (c *graphicsContext) Type() backend.BackendType {
	return c.backendType
}

func (c *graphicsContext) ShaderValidation() bool {
	return c.shaderValidation
}

func (c *graphicsContext) CreateSurface(target backend.SurfaceTarget, opts ...SurfaceBuilderOption) (Surface, error) {
	return newSurface(c, target, opts...)
}

func (c *graphicsContext) Submit(buffers ...backend.CommandBuffer) error {
	return c.device.Submit(buffers...)
}

func (c *graphicsContext) Release() {
	if c.device == nil {
		return
	}
	c.device.Release()
	c.device = nil
	common.Logger().Debug("graphics context released", "backend", c.backendType.String())
}
