package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwBackend holds the GLFW-specific window state and the WebGPU presenter drawing into it.
type glfwBackend struct {
	parent    *engineWindow
	window    *glfw.Window
	presenter *wgpuPresenter
	running   bool
}

// open creates the GLFW window with input callbacks and attaches a WebGPU surface to it.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func (b *glfwBackend) open(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	if w.minWidth > 0 || w.minHeight > 0 {
		win.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)
	}

	b.parent = w
	b.window = win
	b.running = true

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			b.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.keyDown(uint32(key))
		case glfw.Release:
			w.keyUp(uint32(key))
		}
	})

	// Framebuffer size is in pixels, which differs from window size on high-DPI displays.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			// minimised
			return
		}
		b.presenter.resize(width, height)
		w.resized(width, height)
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	presenter, err := newWGPUPresenter(wgpuglfw.GetSurfaceDescriptor(win), fbWidth, fbHeight, w.vsync)
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return err
	}
	b.presenter = presenter
	return nil
}

// isRunning returns false once the running flag is cleared or GLFW reports ShouldClose.
func (b *glfwBackend) isRunning() bool {
	if b.window == nil {
		return false
	}
	return b.running && !b.window.ShouldClose()
}

// pollEvents polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (b *glfwBackend) pollEvents() {
	glfw.PollEvents()
}

func (b *glfwBackend) present(fb *framebuffer.Framebuffer) error {
	return b.presenter.present(fb)
}

// close releases the presenter, destroys the GLFW window and terminates the GLFW library.
func (b *glfwBackend) close() error {
	if b.window == nil {
		return fmt.Errorf("window is not initialized")
	}
	b.running = false
	b.presenter.release()
	b.window.SetShouldClose(true)
	b.window.Destroy()
	b.window = nil
	glfw.Terminate()
	return nil
}
