package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-soft/engine/camera"
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/Carmen-Shannon/oxy-soft/engine/profiler"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/raster"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, e.g. one built with a custom reporting interval.
//
// Parameters:
//   - p: the profiler to record frame statistics into
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithWindow sets the window frames are presented to and events are polled from.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFramebuffer sets the render target. Without it the engine creates one sized to the window on the first frame.
//
// Parameters:
//   - fb: the color and depth target
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFramebuffer(fb *framebuffer.Framebuffer) EngineBuilderOption {
	return func(e *engine) {
		e.framebuffer = fb
	}
}

// WithRasterizer replaces the default rasterizer.
//
// Parameters:
//   - r: the rasterizer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRasterizer(r raster.Rasterizer) EngineBuilderOption {
	return func(e *engine) {
		e.rasterizer = r
	}
}

// WithCamera attaches a camera whose aspect ratio follows window resizes.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithMesh sets the mesh drawn each frame.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMesh(m model.Mesh) EngineBuilderOption {
	return func(e *engine) {
		e.mesh = m
	}
}

// WithProgram sets the pipeline used to shade the mesh.
//
// Parameters:
//   - p: the program
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProgram(p pipeline.Program) EngineBuilderOption {
	return func(e *engine) {
		e.program = p
	}
}

// WithClearColor sets the color written over the whole color buffer at the start of each frame.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(c mgl32.Vec4) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = c
	}
}

// WithClearDepth sets the depth written over the whole depth buffer at the start of each frame.
//
// Parameters:
//   - d: the clear depth, 1 is the far plane
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearDepth(d float32) EngineBuilderOption {
	return func(e *engine) {
		e.clearDepth = d
	}
}

// WithFrameCallback registers the function called each frame before drawing.
//
// Parameters:
//   - callback: function receiving the time since the previous frame in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithResizeCallback registers a function called after the engine has handled a window resize.
//
// Parameters:
//   - callback: function receiving the new size in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizeCallback(callback func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.resizeCallback = callback
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
