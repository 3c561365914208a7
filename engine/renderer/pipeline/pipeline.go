package pipeline

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMissingStage is returned by NewPipeline when a required stage callback is nil.
var ErrMissingStage = errors.New("missing pipeline stage")

// pipeline is the implementation of the Pipeline interface.
// It owns one attribute and one varying block per triangle corner, one scratch varying block
// for the interpolated fragment input, and one uniform block. All are allocated once with the
// pipeline and reused for every triangle.
type pipeline[A, V, U any] struct {
	// pipelineKey is the unique identifier for this pipeline, used for lookups and logging
	pipelineKey string

	stages Stages[A, V, U]

	attribs  [3]A
	varyings [3]V
	fragment V
	uniforms U

	renderState
}

// Program is the opaque view of a pipeline used by the frame driver and the rasterizer.
// It exposes the stage calls and fixed-function state without revealing the block types.
type Program interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// BlockSizes reports the byte sizes of the attribute, varying and uniform blocks.
	//
	// Returns:
	//   - BlockSizes: the block sizes
	BlockSizes() BlockSizes

	// BindVertex copies a mesh vertex into the attribute block of the given corner.
	//
	// Parameters:
	//   - corner: the triangle corner, 0, 1 or 2
	//   - v: the vertex to bind
	BindVertex(corner int, v model.Vertex)

	// ShadeVertex runs the vertex stage for one corner, writing that corner's varyings.
	//
	// Parameters:
	//   - corner: the triangle corner, 0, 1 or 2
	//
	// Returns:
	//   - mgl32.Vec4: the clip-space position
	ShadeVertex(corner int) mgl32.Vec4

	// ShadeFragment interpolates the corner varyings with the given weights and runs the fragment stage.
	//
	// Parameters:
	//   - weights: perspective-correct barycentric weights of the pixel
	//   - backface: true if the triangle is back facing
	//
	// Returns:
	//   - mgl32.Vec4: the fragment color
	//   - bool: true if the fragment was discarded
	ShadeFragment(weights [3]float32, backface bool) (mgl32.Vec4, bool)

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether source-alpha blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - CullMode: the cull mode for this pipeline
	CullMode() CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - FrontFace: the front face winding for this pipeline
	FrontFace() FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - ColorWriteMask: the channels written by this pipeline
	WriteMask() ColorWriteMask
}

// Pipeline is a Program with typed access to its blocks.
// Callers write the uniform block through Uniforms before drawing; shaders treat it as read-only.
type Pipeline[A, V, U any] interface {
	Program

	// Attribs returns the attribute block of a corner.
	//
	// Parameters:
	//   - corner: the triangle corner, 0, 1 or 2
	//
	// Returns:
	//   - *A: the attribute block
	Attribs(corner int) *A

	// Varyings returns the varying block of a corner.
	//
	// Parameters:
	//   - corner: the triangle corner, 0, 1 or 2
	//
	// Returns:
	//   - *V: the varying block
	Varyings(corner int) *V

	// Uniforms returns the uniform block.
	//
	// Returns:
	//   - *U: the uniform block
	Uniforms() *U
}

// NewPipeline is the entry point to create a new Pipeline. All stage callbacks must be provided.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - stages: the typed stage callbacks
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline[A, V, U]: a new Pipeline with its blocks allocated
//   - error: ErrMissingStage if any stage is nil
func NewPipeline[A, V, U any](pipelineKey string, stages Stages[A, V, U], opts ...PipelineBuilderOption) (Pipeline[A, V, U], error) {
	switch {
	case stages.Bind == nil:
		return nil, fmt.Errorf("pipeline %q: %w: bind", pipelineKey, ErrMissingStage)
	case stages.Vertex == nil:
		return nil, fmt.Errorf("pipeline %q: %w: vertex", pipelineKey, ErrMissingStage)
	case stages.Fragment == nil:
		return nil, fmt.Errorf("pipeline %q: %w: fragment", pipelineKey, ErrMissingStage)
	case stages.Interpolate == nil:
		return nil, fmt.Errorf("pipeline %q: %w: interpolate", pipelineKey, ErrMissingStage)
	}

	p := &pipeline[A, V, U]{
		pipelineKey: pipelineKey,
		stages:      stages,
		renderState: defaultRenderState(),
	}
	for _, opt := range opts {
		opt(&p.renderState)
	}
	return p, nil
}

func (p *pipeline[A, V, U]) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline[A, V, U]) BlockSizes() BlockSizes {
	return BlockSizes{
		Attribs:  unsafe.Sizeof(p.attribs[0]),
		Varyings: unsafe.Sizeof(p.varyings[0]),
		Uniforms: unsafe.Sizeof(p.uniforms),
	}
}

func (p *pipeline[A, V, U]) BindVertex(corner int, v model.Vertex) {
	p.stages.Bind(&p.attribs[corner], v)
}

func (p *pipeline[A, V, U]) ShadeVertex(corner int) mgl32.Vec4 {
	return p.stages.Vertex(&p.attribs[corner], &p.varyings[corner], &p.uniforms)
}

func (p *pipeline[A, V, U]) ShadeFragment(weights [3]float32, backface bool) (mgl32.Vec4, bool) {
	p.stages.Interpolate(&p.fragment, [3]*V{&p.varyings[0], &p.varyings[1], &p.varyings[2]}, weights)
	discard := false
	color := p.stages.Fragment(&p.fragment, &p.uniforms, &discard, backface)
	return color, discard
}

func (p *pipeline[A, V, U]) Attribs(corner int) *A {
	return &p.attribs[corner]
}

func (p *pipeline[A, V, U]) Varyings(corner int) *V {
	return &p.varyings[corner]
}

func (p *pipeline[A, V, U]) Uniforms() *U {
	return &p.uniforms
}

func (p *pipeline[A, V, U]) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline[A, V, U]) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline[A, V, U]) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline[A, V, U]) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline[A, V, U]) FrontFace() FrontFace {
	return p.frontFace
}

func (p *pipeline[A, V, U]) WriteMask() ColorWriteMask {
	return p.writeMask
}
