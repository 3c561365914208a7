package pipeline

import (
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexShader transforms one corner. It reads the attribute and uniform blocks, writes the
// varying block for that corner, and returns the clip-space position.
type VertexShader[A, V, U any] func(attribs *A, varyings *V, uniforms *U) mgl32.Vec4

// FragmentShader shades one covered pixel from the interpolated varyings. Setting *discard to
// true suppresses the color and depth write. backface reports the winding of the triangle.
type FragmentShader[V, U any] func(varyings *V, uniforms *U, discard *bool, backface bool) mgl32.Vec4

// Interpolator writes the weighted blend of the three corner varyings into out.
// Weights are perspective-correct and sum to one.
type Interpolator[V any] func(out *V, in [3]*V, weights [3]float32)

// AttributeBinder copies a mesh vertex into an attribute block.
type AttributeBinder[A any] func(attribs *A, v model.Vertex)

// Stages groups the typed callbacks that make up a pipeline. All four are required.
type Stages[A, V, U any] struct {
	Bind        AttributeBinder[A]
	Vertex      VertexShader[A, V, U]
	Fragment    FragmentShader[V, U]
	Interpolate Interpolator[V]
}

// BlockSizes reports the byte sizes of a pipeline's attribute, varying and uniform blocks.
type BlockSizes struct {
	Attribs  uintptr
	Varyings uintptr
	Uniforms uintptr
}

// CullMode selects which triangle faces are discarded before fragment shading.
type CullMode int

const (
	// CullModeNone keeps both front and back faces.
	CullModeNone CullMode = iota
	// CullModeFront discards front faces.
	CullModeFront
	// CullModeBack discards back faces.
	CullModeBack
)

// FrontFace selects the screen-space winding treated as front facing.
type FrontFace int

const (
	// FrontFaceCCW treats counter-clockwise triangles as front facing.
	FrontFaceCCW FrontFace = iota
	// FrontFaceCW treats clockwise triangles as front facing.
	FrontFaceCW
)

// ColorWriteMask selects which color channels a pipeline writes.
type ColorWriteMask uint8

const (
	ColorWriteMaskRed   ColorWriteMask = 1 << 0
	ColorWriteMaskGreen ColorWriteMask = 1 << 1
	ColorWriteMaskBlue  ColorWriteMask = 1 << 2
	ColorWriteMaskAlpha ColorWriteMask = 1 << 3
	ColorWriteMaskAll                  = ColorWriteMaskRed | ColorWriteMaskGreen | ColorWriteMaskBlue | ColorWriteMaskAlpha
	ColorWriteMaskNone  ColorWriteMask = 0
)

// renderState holds the fixed-function configuration consumed by the rasterizer.
type renderState struct {
	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          CullMode
	frontFace         FrontFace
	writeMask         ColorWriteMask
}

func defaultRenderState() renderState {
	return renderState{
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          CullModeNone,
		frontFace:         FrontFaceCCW,
		writeMask:         ColorWriteMaskAll,
	}
}
