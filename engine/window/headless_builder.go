package window

// HeadlessBuilderOption is a functional option for configuring a headless window.
type HeadlessBuilderOption func(w *headlessWindow)

// WithTitle sets the title reported by the window.
func WithTitle(title string) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.title = title
	}
}

// WithSize sets the initial size in pixels.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithSize(width, height int) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.width = width
		w.height = height
	}
}

// WithFrameLimit closes the window after n loop iterations. Zero means no limit.
//
// Parameters:
//   - n: the number of frames to run
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithFrameLimit(n uint64) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.frameLimit = n
	}
}
