// Package window defines the window collaborator the application runner drives, and a
// headless implementation of it. Desktop windows live in the desktop subpackage so that
// importing this package never pulls in cgo.
package window

import (
	"errors"
	"runtime"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// ErrWindowClosed is returned by operations on a window that has been closed.
var ErrWindowClosed = errors.New("window is closed")

// Window provides platform windowing and input event handling.
// A Window is also the SurfaceTarget a Surface presents to; its size is reported in pixels.
type Window interface {
	backend.SurfaceTarget

	// Title returns the window title.
	Title() string

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetCloseCallback sets the function called once when the window is asked to close.
	SetCloseCallback(callback func())

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up, negative = down)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()
}

// Events holds the callbacks of a Window and dispatches to them. Window implementations
// embed it to get the Set*Callback methods.
type Events struct {
	onUpdate    func()
	onResize    func(width, height int)
	onClose     func()
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseMove func(x, y int32)
}

func (e *Events) SetUpdateCallback(callback func()) {
	e.onUpdate = callback
}

func (e *Events) SetResizeCallback(callback func(width, height int)) {
	e.onResize = callback
}

func (e *Events) SetCloseCallback(callback func()) {
	e.onClose = callback
}

func (e *Events) SetScrollCallback(callback func(delta float32)) {
	e.onScroll = callback
}

func (e *Events) SetKeyDownCallback(callback func(keyCode uint32)) {
	e.onKeyDown = callback
}

func (e *Events) SetKeyUpCallback(callback func(keyCode uint32)) {
	e.onKeyUp = callback
}

func (e *Events) SetMouseMoveCallback(callback func(x, y int32)) {
	e.onMouseMove = callback
}

// EmitUpdate calls the update callback if one is set.
func (e *Events) EmitUpdate() {
	if e.onUpdate != nil {
		e.onUpdate()
	}
}

// EmitResize calls the resize callback if one is set.
func (e *Events) EmitResize(width, height int) {
	if e.onResize != nil {
		e.onResize(width, height)
	}
}

// EmitClose calls the close callback if one is set.
func (e *Events) EmitClose() {
	if e.onClose != nil {
		e.onClose()
	}
}

// EmitScroll calls the scroll callback if one is set.
func (e *Events) EmitScroll(delta float32) {
	if e.onScroll != nil {
		e.onScroll(delta)
	}
}

// EmitKeyDown calls the key down callback if one is set.
func (e *Events) EmitKeyDown(keyCode uint32) {
	if e.onKeyDown != nil {
		e.onKeyDown(keyCode)
	}
}

// EmitKeyUp calls the key up callback if one is set.
func (e *Events) EmitKeyUp(keyCode uint32) {
	if e.onKeyUp != nil {
		e.onKeyUp(keyCode)
	}
}

// EmitMouseMove calls the mouse move callback if one is set.
func (e *Events) EmitMouseMove(x, y int32) {
	if e.onMouseMove != nil {
		e.onMouseMove(x, y)
	}
}

// RunLoop calls poll and then the update callback until poll reports the window stopped.
// Implementations use it for ProcessMessages.
//
// Parameters:
//   - poll: pumps pending events and reports whether the window is still running
func (e *Events) RunLoop(poll func() bool) {
	for poll() {
		e.EmitUpdate()
		runtime.Gosched()
	}
}
