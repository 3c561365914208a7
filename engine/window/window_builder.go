package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithMinSize sets the smallest size the user may resize the window to.
// Ignored by the headless backend.
//
// Parameters:
//   - width: minimum width in pixels
//   - height: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithVSync synchronises presentation with the display refresh.
//
// Parameters:
//   - vsync: true for FIFO presentation, false for immediate
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithVSync(vsync bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.vsync = vsync
	}
}

// WithMaxFrames sets how many frames the headless backend presents before it stops running.
// Zero runs until Close. Defaults to 1.
//
// Parameters:
//   - frames: the frame budget
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxFrames(frames int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxFrames = frames
	}
}

// WithSnapshotPath makes the headless backend write its last presented frame as a PNG on Close.
//
// Parameters:
//   - path: destination file
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSnapshotPath(path string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.snapshotPath = path
	}
}
