// Package window provides the platform surfaces that display a software framebuffer and
// deliver keyboard input. Three backends are available: GLFW with WebGPU presentation,
// Ebiten, and an offscreen headless backend.
package window

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
)

// BackendType selects the platform implementation behind a Window.
type BackendType int

const (
	// BackendTypeGLFW opens a GLFW window and presents frames through a WebGPU surface.
	BackendTypeGLFW BackendType = iota

	// BackendTypeEbiten opens an Ebiten window. Ebiten owns the main loop, see Looper.
	BackendTypeEbiten

	// BackendTypeHeadless renders offscreen for a fixed number of frames.
	BackendTypeHeadless
)

// ErrClosed is returned when presenting to a window that has been closed.
var ErrClosed = errors.New("window closed")

// Window provides platform windowing, presentation and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and key repeat events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code, see common.Key*
	SetKeyUpCallback(callback func(keyCode uint32))

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// PollEvents processes pending platform events once without blocking,
	// dispatching input to the registered callbacks.
	PollEvents()

	// Present displays the color buffer of fb.
	//
	// Parameters:
	//   - fb: the framebuffer to display
	//
	// Returns:
	//   - error: error if the platform fails to display the frame
	Present(fb *framebuffer.Framebuffer) error

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Title returns the window title.
	//
	// Returns:
	//   - string: the title
	Title() string

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// Looper is implemented by windows whose platform owns the main loop.
// Callers must hand control to Loop instead of polling IsRunning themselves.
type Looper interface {
	// Loop calls step once per platform tick until the window closes or step fails.
	//
	// Parameters:
	//   - step: the per-frame function
	//
	// Returns:
	//   - error: the first error returned by step or the platform
	Loop(step func() error) error
}

// FrameRecorder is implemented by windows that retain the last presented frame.
type FrameRecorder interface {
	// LastFrame returns a copy of the last presented frame as packed RGBA8.
	//
	// Returns:
	//   - common.PixelData: the frame pixels
	//   - bool: false if nothing has been presented yet
	LastFrame() (common.PixelData, bool)
}

// windowBackend is the platform half of a Window.
type windowBackend interface {
	open(w *engineWindow) error
	isRunning() bool
	pollEvents()
	present(fb *framebuffer.Framebuffer) error
	close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, the platform backend, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current window client area width in pixels.
	width int

	// height is the current window client area height in pixels.
	height int

	// minWidth and minHeight bound interactive resizing. Zero disables the limit.
	minWidth  int
	minHeight int

	// vsync selects a FIFO present mode on backends that support it.
	vsync bool

	// maxFrames is the headless frame budget. Zero means unlimited.
	maxFrames int

	// snapshotPath is where the headless backend writes its last frame on Close.
	snapshotPath string

	backend windowBackend

	// onResize is called when the window is resized.
	onResize func(width, height int)

	// onKeyDown is called when a key is pressed or repeats.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)
}

var _ Window = &engineWindow{}
var _ Looper = &engineWindow{}
var _ FrameRecorder = &engineWindow{}

// NewWindow creates and opens a new Window with the specified options.
// Applies default values first (800x600), then each option in order.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - backendType: the platform backend to open
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(backendType BackendType, options ...WindowBuilderOption) Window {
	w, err := newWindow(backendType, options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func newWindow(backendType BackendType, options ...WindowBuilderOption) (*engineWindow, error) {
	w := &engineWindow{
		title:     "oxy-soft",
		width:     800,
		height:    600,
		maxFrames: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}

	switch backendType {
	case BackendTypeGLFW:
		w.backend = &glfwBackend{}
	case BackendTypeEbiten:
		w.backend = &ebitenBackend{}
	case BackendTypeHeadless:
		w.backend = &headlessBackend{}
	default:
		return nil, fmt.Errorf("unknown window backend %d", backendType)
	}

	if err := w.backend.open(w); err != nil {
		return nil, err
	}
	common.Logger().Info("window opened", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) IsRunning() bool {
	return w.backend.isRunning()
}

func (w *engineWindow) PollEvents() {
	w.backend.pollEvents()
}

func (w *engineWindow) Present(fb *framebuffer.Framebuffer) error {
	if !w.backend.isRunning() {
		return ErrClosed
	}
	return w.backend.present(fb)
}

func (w *engineWindow) Close() error {
	return w.backend.close()
}

// Loop runs step until the window closes. Backends without their own loop are polled here.
func (w *engineWindow) Loop(step func() error) error {
	if l, ok := w.backend.(Looper); ok {
		return l.Loop(step)
	}
	for w.IsRunning() {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (w *engineWindow) LastFrame() (common.PixelData, bool) {
	if r, ok := w.backend.(FrameRecorder); ok {
		return r.LastFrame()
	}
	return common.PixelData{}, false
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records a new client size and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) keyDown(code uint32) {
	if w.onKeyDown != nil {
		w.onKeyDown(code)
	}
}

func (w *engineWindow) keyUp(code uint32) {
	if w.onKeyUp != nil {
		w.onKeyUp(code)
	}
}
