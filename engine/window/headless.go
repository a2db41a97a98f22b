package window

import "fmt"

// Headless is a Window without a display. Its message loop only runs the update callback,
// optionally for a fixed number of frames, and resizes are driven by the caller.
type Headless interface {
	Window

	// Resize changes the reported size and emits a resize event. Zero sizes are reported too,
	// as a minimized desktop window would.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrWindowClosed if the window was closed
	Resize(width, height int) error

	// Frames returns how many loop iterations have run.
	Frames() uint64
}

type headlessWindow struct {
	Events

	title      string
	width      int
	height     int
	frameLimit uint64
	frames     uint64
	running    bool
}

var _ Headless = &headlessWindow{}

// NewHeadless creates a headless window. Without WithFrameLimit the loop runs until Close is
// called, usually from the update callback.
//
// Parameters:
//   - opts: functional options to configure the window
//
// Returns:
//   - Headless: the window
func NewHeadless(opts ...HeadlessBuilderOption) Headless {
	w := &headlessWindow{
		title:   "headless",
		width:   1280,
		height:  720,
		running: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *headlessWindow) Title() string {
	return w.title
}

func (w *headlessWindow) Width() int {
	return w.width
}

func (w *headlessWindow) Height() int {
	return w.height
}

func (w *headlessWindow) Frames() uint64 {
	return w.frames
}

func (w *headlessWindow) Resize(width, height int) error {
	if !w.running {
		return fmt.Errorf("resize %q: %w", w.title, ErrWindowClosed)
	}
	w.width, w.height = width, height
	w.EmitResize(width, height)
	return nil
}

func (w *headlessWindow) IsRunning() bool {
	return w.running
}

func (w *headlessWindow) Close() error {
	if !w.running {
		return nil
	}
	w.running = false
	w.EmitClose()
	return nil
}

func (w *headlessWindow) ProcessMessages() {
	w.RunLoop(func() bool {
		if w.frameLimit > 0 && w.frames >= w.frameLimit {
			_ = w.Close()
		}
		if !w.running {
			return false
		}
		w.frames++
		return true
	})
}
