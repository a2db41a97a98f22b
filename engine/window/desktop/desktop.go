// Package desktop provides a GLFW backed window that the wgpu backend can create a surface for.
// Importing it registers the wgpu backend.
//
// GLFW must be driven from the main OS thread. NewWindow locks the calling goroutine to its
// thread, so create the window and run ProcessMessages from the main goroutine.
package desktop

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/kopki-go/common"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/wgpu_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window is a desktop window. Besides the window.Window events it exposes the native surface
// descriptor the wgpu backend needs.
type Window interface {
	window.Window

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// desktopWindow holds window configuration, GLFW state, and the event callbacks.
type desktopWindow struct {
	window.Events

	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	resizable    bool
	closeOnEsc   bool
	handle       *glfw.Window
	running      bool
	closeEmitted bool
}

var _ Window = &desktopWindow{}

func newDesktopWindow(opts ...WindowBuilderOption) *desktopWindow {
	w := &desktopWindow{
		title:      "kopki",
		width:      1280,
		height:     720,
		minWidth:   glfw.DontCare,
		minHeight:  glfw.DontCare,
		maxWidth:   glfw.DontCare,
		maxHeight:  glfw.DontCare,
		resizable:  true,
		closeOnEsc: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a GLFW window with no client API, ready for a wgpu surface.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
//
// Parameters:
//   - opts: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error wrapping common.ErrDeviceUnavailable if GLFW cannot initialise or create the window
func NewWindow(opts ...WindowBuilderOption) (Window, error) {
	w := newDesktopWindow(opts...)
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v: %w", err, common.ErrDeviceUnavailable)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v: %w", err, common.ErrDeviceUnavailable)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)
	w.handle = win
	w.running = true
	w.registerCallbacks()

	// Stored dimensions reflect the framebuffer, which differs from the requested size on high-DPI displays.
	w.width, w.height = win.GetFramebufferSize()
	common.Logger().Debug("window created", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// registerCallbacks wires GLFW input and window events to the embedded Events.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
func (w *desktopWindow) registerCallbacks() {
	w.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if w.closeOnEsc && key == glfw.KeyEscape && action == glfw.Press {
			w.handle.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.EmitKeyDown(uint32(key))
		case glfw.Release:
			w.EmitKeyUp(uint32(key))
		}
	})

	w.handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.EmitScroll(float32(yoff))
	})

	w.handle.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.EmitMouseMove(int32(xpos), int32(ypos))
	})

	// Framebuffer size, not window size: the surface is configured in pixels.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	w.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		w.EmitResize(width, height)
	})

	w.handle.SetCloseCallback(func(_ *glfw.Window) {
		w.emitCloseOnce()
	})
}

func (w *desktopWindow) emitCloseOnce() {
	if w.closeEmitted {
		return
	}
	w.closeEmitted = true
	w.EmitClose()
}

func (w *desktopWindow) Title() string {
	return w.title
}

func (w *desktopWindow) Width() int {
	return w.width
}

func (w *desktopWindow) Height() int {
	return w.height
}

// SurfaceDescriptor uses the wgpuglfw bridge package which has per-platform implementations.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (w *desktopWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.handle == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.handle)
}

func (w *desktopWindow) IsRunning() bool {
	return w.handle != nil && w.running && !w.handle.ShouldClose()
}

// Close destroys the GLFW window and terminates the GLFW library.
func (w *desktopWindow) Close() error {
	if w.handle == nil {
		return fmt.Errorf("close %q: %w", w.title, window.ErrWindowClosed)
	}
	w.running = false
	w.emitCloseOnce()
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
	return nil
}

// ProcessMessages polls GLFW for pending events without blocking between updates.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (w *desktopWindow) ProcessMessages() {
	w.RunLoop(func() bool {
		if !w.IsRunning() {
			return false
		}
		glfw.PollEvents()
		if !w.IsRunning() {
			w.emitCloseOnce()
			return false
		}
		return true
	})
}
