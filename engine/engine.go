package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/camera"
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/Carmen-Shannon/oxy-soft/engine/profiler"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/raster"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoWindow is returned by Run and Frame when the engine has no window to present to.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
// Drives the software frame loop on the calling goroutine.
type engine struct {
	window      window.Window
	framebuffer *framebuffer.Framebuffer
	rasterizer  raster.Rasterizer
	camera      camera.Camera

	mesh    model.Mesh
	program pipeline.Program

	clearColor mgl32.Vec4
	clearDepth float32

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback  func(deltaTime float32)
	resizeCallback func(width, height int)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
	frameCount       int
}

// Engine is the main entry point for the engine.
// It owns the frame loop: clear, per-triangle vertex binding and rasterization, presentation and event polling.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Framebuffer returns the render target, or nil before the first frame when none was supplied.
	//
	// Returns:
	//   - *framebuffer.Framebuffer: the color and depth target
	Framebuffer() *framebuffer.Framebuffer

	// Rasterizer returns the rasterizer triangles are submitted to.
	//
	// Returns:
	//   - raster.Rasterizer: the rasterizer
	Rasterizer() raster.Rasterizer

	// Mesh returns the mesh drawn each frame.
	//
	// Returns:
	//   - model.Mesh: the mesh, or nil
	Mesh() model.Mesh

	// SetMesh replaces the mesh drawn each frame. Nil draws nothing.
	//
	// Parameters:
	//   - m: the mesh to draw
	SetMesh(m model.Mesh)

	// Program returns the pipeline used to shade the mesh.
	//
	// Returns:
	//   - pipeline.Program: the program, or nil
	Program() pipeline.Program

	// SetProgram replaces the pipeline used to shade the mesh. Nil draws nothing.
	//
	// Parameters:
	//   - p: the program to use
	SetProgram(p pipeline.Program)

	// SetFrameCallback registers the function called each frame after the clear and before any triangle is drawn.
	// Use this to update uniforms from the camera.
	//
	// Parameters:
	//   - callback: function receiving the time since the previous frame in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// FrameCount returns the number of frames completed.
	//
	// Returns:
	//   - int: completed frames
	FrameCount() int

	// Frame renders and presents exactly one frame, then polls window events once.
	//
	// Returns:
	//   - error: error if the framebuffer cannot be created or presentation fails
	Frame() error

	// Run renders frames until the window stops running (blocks until window closes).
	// Windows that own their main loop, see window.Looper, drive the frames instead.
	//
	// Returns:
	//   - error: the first frame error
	Run() error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The clear color defaults to transparent black and the clear depth to 1 (far).
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, mesh, program, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		rasterizer: raster.NewRasterizer(),
		clearColor: mgl32.Vec4{0, 0, 0, 0},
		clearDepth: 1,
		profiler:   profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Framebuffer() *framebuffer.Framebuffer {
	return e.framebuffer
}

func (e *engine) Rasterizer() raster.Rasterizer {
	return e.rasterizer
}

func (e *engine) Mesh() model.Mesh {
	return e.mesh
}

func (e *engine) SetMesh(m model.Mesh) {
	e.mesh = m
}

func (e *engine) Program() pipeline.Program {
	return e.program
}

func (e *engine) SetProgram(p pipeline.Program) {
	e.program = p
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) FrameCount() int {
	return e.frameCount
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	common.Logger().Info("engine started", "window", e.window.Title())
	defer func() {
		common.Logger().Info("engine stopped", "frames", e.frameCount)
	}()

	if l, ok := e.window.(window.Looper); ok {
		return l.Loop(e.Frame)
	}
	for e.window.IsRunning() {
		if err := e.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) Frame() error {
	if e.window == nil {
		return ErrNoWindow
	}
	start := time.Now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(start.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = start

	if e.framebuffer == nil {
		fb, err := framebuffer.New(e.window.Width(), e.window.Height())
		if err != nil {
			return fmt.Errorf("failed to create framebuffer: %w", err)
		}
		e.framebuffer = fb
	}

	e.framebuffer.Clear(e.clearColor, e.clearDepth)

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}

	e.drawMesh()

	if err := e.window.Present(e.framebuffer); err != nil && !errors.Is(err, window.ErrClosed) {
		return fmt.Errorf("failed to present frame %d: %w", e.frameCount, err)
	}
	e.window.PollEvents()

	e.frameCount++
	if e.profilingEnabled {
		stats := e.rasterizer.Stats()
		e.profiler.Record(stats.Triangles, stats.Fragments, stats.Culled)
		e.profiler.Tick()
	}
	e.rasterizer.ResetStats()

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

// drawMesh binds each triangle's corners in order 0, 1, 2 and submits it to the rasterizer.
func (e *engine) drawMesh() {
	if e.mesh == nil || e.program == nil || e.mesh.Released() {
		return
	}
	n := e.mesh.TriangleCount()
	for i := 0; i < n; i++ {
		tri := e.mesh.Triangle(i)
		for corner, v := range tri {
			e.program.BindVertex(corner, v)
		}
		e.rasterizer.DrawTriangle(e.framebuffer, e.program)
	}
}

// resize recreates the framebuffer at the new window size and updates the camera aspect ratio.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	fb, err := framebuffer.New(width, height)
	if err != nil {
		common.Logger().Warn("framebuffer resize failed", "width", width, "height", height, "error", err)
		return
	}
	e.framebuffer = fb
	if e.camera != nil {
		e.camera.SetAspect(float32(width) / float32(height))
	}
	if e.resizeCallback != nil {
		e.resizeCallback(width, height)
	}
	common.Logger().Debug("framebuffer resized", "width", width, "height", height)
}
