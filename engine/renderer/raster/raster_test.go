package raster

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// The test program passes positions through as clip coordinates (w = 1) and
// carries a per-corner color in the tangent slot.
type attribs struct {
	Position mgl32.Vec4
	Color    mgl32.Vec4
}

type varyings struct {
	Color mgl32.Vec4
}

type uniforms struct {
	Discard bool
	W       float32
}

func newProgram(t *testing.T, opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline[attribs, varyings, uniforms] {
	t.Helper()
	p, err := pipeline.NewPipeline("raster_test", pipeline.Stages[attribs, varyings, uniforms]{
		Bind: func(a *attribs, v model.Vertex) {
			a.Position = v.Position.Vec4(1)
			a.Color = v.Tangent
		},
		Vertex: func(a *attribs, v *varyings, u *uniforms) mgl32.Vec4 {
			v.Color = a.Color
			if u.W != 0 {
				return a.Position.Mul(u.W)
			}
			return a.Position
		},
		Fragment: func(v *varyings, u *uniforms, discard *bool, backface bool) mgl32.Vec4 {
			*discard = u.Discard
			return v.Color
		},
		Interpolate: func(out *varyings, in [3]*varyings, w [3]float32) {
			out.Color = in[0].Color.Mul(w[0]).Add(in[1].Color.Mul(w[1])).Add(in[2].Color.Mul(w[2]))
		},
	}, opts...)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

func bind(p pipeline.Program, z float32, color mgl32.Vec4, corners [3]mgl32.Vec2) {
	for j, c := range corners {
		p.BindVertex(j, model.Vertex{Position: mgl32.Vec3{c[0], c[1], z}, Tangent: color})
	}
}

func newFramebuffer(t *testing.T, w, h int) *framebuffer.Framebuffer {
	t.Helper()
	fb, err := framebuffer.New(w, h)
	if err != nil {
		t.Fatalf("framebuffer.New() error = %v", err)
	}
	fb.Clear(mgl32.Vec4{}, 1)
	return fb
}

// ccwFull covers the whole viewport with counter-clockwise winding.
var ccwFull = [3]mgl32.Vec2{{-1, -1}, {3, -1}, {-1, 3}}

// cwFull is ccwFull with reversed winding.
var cwFull = [3]mgl32.Vec2{{-1, -1}, {-1, 3}, {3, -1}}

func TestDrawTriangleCoversViewport(t *testing.T) {
	fb := newFramebuffer(t, 8, 6)
	p := newProgram(t)
	r := NewRasterizer()

	red := mgl32.Vec4{1, 0, 0, 1}
	bind(p, 0, red, ccwFull)
	r.DrawTriangle(fb, p)

	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			if !fb.Color(x, y).ApproxEqual(red) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, fb.Color(x, y), red)
			}
			if fb.Depth(x, y) != 0.5 {
				t.Fatalf("depth (%d,%d) = %v, want 0.5", x, y, fb.Depth(x, y))
			}
		}
	}
	if s := r.Stats(); s.Triangles != 1 || s.Fragments != 48 {
		t.Errorf("Stats() = %+v, want 1 triangle and 48 fragments", s)
	}
}

func TestDrawTriangleHalfViewport(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t)
	r := NewRasterizer()

	// Lower-left half in NDC, which is the bottom-left of the image.
	bind(p, 0, mgl32.Vec4{0, 1, 0, 1}, [3]mgl32.Vec2{{-1, -1}, {1, -1}, {-1, 1}})
	r.DrawTriangle(fb, p)

	if fb.Color(0, 3) == (mgl32.Vec4{}) {
		t.Error("bottom-left pixel not covered")
	}
	if fb.Color(3, 0) != (mgl32.Vec4{}) {
		t.Error("top-right pixel covered")
	}
}

func TestDrawTriangleDepthTest(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t)
	r := NewRasterizer()

	near := mgl32.Vec4{0, 0, 1, 1}
	far := mgl32.Vec4{1, 1, 0, 1}

	bind(p, -0.5, near, ccwFull)
	r.DrawTriangle(fb, p)
	bind(p, 0.5, far, ccwFull)
	r.DrawTriangle(fb, p)

	if got := fb.Color(1, 1); !got.ApproxEqual(near) {
		t.Errorf("color = %v, want the nearer triangle %v", got, near)
	}
	if got := fb.Depth(1, 1); !mgl32.FloatEqualThreshold(got, 0.25, 1e-6) {
		t.Errorf("depth = %v, want 0.25", got)
	}
}

func TestDrawTriangleDepthTestDisabled(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t, pipeline.WithDepthTestEnabled(false), pipeline.WithDepthWriteEnabled(false))
	r := NewRasterizer()

	bind(p, -0.5, mgl32.Vec4{0, 0, 1, 1}, ccwFull)
	r.DrawTriangle(fb, p)
	last := mgl32.Vec4{1, 1, 0, 1}
	bind(p, 0.5, last, ccwFull)
	r.DrawTriangle(fb, p)

	if got := fb.Color(2, 2); !got.ApproxEqual(last) {
		t.Errorf("color = %v, want the last triangle %v", got, last)
	}
	if got := fb.Depth(2, 2); got != 1 {
		t.Errorf("depth = %v, want untouched 1", got)
	}
}

func TestDrawTriangleCulling(t *testing.T) {
	tests := []struct {
		name      string
		opts      []pipeline.PipelineBuilderOption
		corners   [3]mgl32.Vec2
		wantDrawn bool
	}{
		{"no cull front", nil, ccwFull, true},
		{"no cull back", nil, cwFull, true},
		{"cull back keeps front", []pipeline.PipelineBuilderOption{pipeline.WithCullMode(pipeline.CullModeBack)}, ccwFull, true},
		{"cull back drops back", []pipeline.PipelineBuilderOption{pipeline.WithCullMode(pipeline.CullModeBack)}, cwFull, false},
		{"cull front drops front", []pipeline.PipelineBuilderOption{pipeline.WithCullMode(pipeline.CullModeFront)}, ccwFull, false},
		{"cw front face", []pipeline.PipelineBuilderOption{
			pipeline.WithCullMode(pipeline.CullModeBack),
			pipeline.WithFrontFace(pipeline.FrontFaceCW),
		}, cwFull, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFramebuffer(t, 4, 4)
			p := newProgram(t, tt.opts...)
			r := NewRasterizer()
			bind(p, 0, mgl32.Vec4{1, 1, 1, 1}, tt.corners)
			r.DrawTriangle(fb, p)

			drawn := fb.Color(1, 1) != (mgl32.Vec4{})
			if drawn != tt.wantDrawn {
				t.Errorf("drawn = %v, want %v (stats %+v)", drawn, tt.wantDrawn, r.Stats())
			}
		})
	}
}

func TestDrawTriangleBackfaceFlag(t *testing.T) {
	fb := newFramebuffer(t, 2, 2)
	var sawBackface bool
	p, err := pipeline.NewPipeline("backface", pipeline.Stages[attribs, varyings, uniforms]{
		Bind:   func(a *attribs, v model.Vertex) { a.Position = v.Position.Vec4(1) },
		Vertex: func(a *attribs, v *varyings, u *uniforms) mgl32.Vec4 { return a.Position },
		Fragment: func(v *varyings, u *uniforms, discard *bool, backface bool) mgl32.Vec4 {
			sawBackface = backface
			return mgl32.Vec4{1, 1, 1, 1}
		},
		Interpolate: func(out *varyings, in [3]*varyings, w [3]float32) {},
	})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	r := NewRasterizer()

	bind(p, 0, mgl32.Vec4{}, cwFull)
	r.DrawTriangle(fb, p)
	if !sawBackface {
		t.Error("clockwise triangle not reported as backface")
	}
	bind(p, 0, mgl32.Vec4{}, ccwFull)
	r.DrawTriangle(fb, p)
	if sawBackface {
		t.Error("counter-clockwise triangle reported as backface")
	}
}

func TestDrawTriangleDiscard(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t)
	p.Uniforms().Discard = true
	r := NewRasterizer()

	bind(p, 0, mgl32.Vec4{1, 1, 1, 1}, ccwFull)
	r.DrawTriangle(fb, p)

	if fb.Color(1, 1) != (mgl32.Vec4{}) || fb.Depth(1, 1) != 1 {
		t.Error("discarded fragment wrote color or depth")
	}
	if s := r.Stats(); s.Discarded != 16 {
		t.Errorf("Stats().Discarded = %d, want 16", s.Discarded)
	}
}

func TestDrawTriangleClipRejects(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t)
	r := NewRasterizer()

	// Entirely right of the viewport.
	bind(p, 0, mgl32.Vec4{1, 1, 1, 1}, [3]mgl32.Vec2{{2, -1}, {4, -1}, {2, 1}})
	r.DrawTriangle(fb, p)

	// Behind the eye: negative w.
	p.Uniforms().W = -1
	bind(p, 0, mgl32.Vec4{1, 1, 1, 1}, ccwFull)
	r.DrawTriangle(fb, p)

	if s := r.Stats(); s.Clipped != 2 || s.Fragments != 0 {
		t.Errorf("Stats() = %+v, want 2 clipped and no fragments", s)
	}

	r.ResetStats()
	if r.Stats() != (Stats{}) {
		t.Errorf("ResetStats() left %+v", r.Stats())
	}
}

func TestDrawTriangleDegenerate(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	p := newProgram(t)
	r := NewRasterizer()

	bind(p, 0, mgl32.Vec4{1, 1, 1, 1}, [3]mgl32.Vec2{{-1, -1}, {0, 0}, {1, 1}})
	r.DrawTriangle(fb, p)
	if s := r.Stats(); s.Culled != 1 || s.Fragments != 0 {
		t.Errorf("Stats() = %+v, want 1 culled", s)
	}
}

func TestDrawTriangleInterpolates(t *testing.T) {
	fb := newFramebuffer(t, 4, 4)
	r := NewRasterizer()

	p := newProgram(t)
	corners := ccwFull
	colors := [3]mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}}
	for j, c := range corners {
		p.BindVertex(j, model.Vertex{Position: mgl32.Vec3{c[0], c[1], 0}, Tangent: colors[j]})
	}
	r.DrawTriangle(fb, p)

	// Bottom-left pixel sits close to corner 0, so red dominates.
	c := fb.Color(0, 3)
	if c[0] <= c[1] || c[0] <= c[2] {
		t.Errorf("bottom-left color = %v, want red dominant", c)
	}
	if !mgl32.FloatEqualThreshold(c[0]+c[1]+c[2], 1, 1e-5) {
		t.Errorf("interpolated weights sum = %v, want 1", c[0]+c[1]+c[2])
	}
}

func TestWriteMaskAndBlend(t *testing.T) {
	fb := newFramebuffer(t, 2, 2)
	fb.ClearColor(mgl32.Vec4{0, 0, 1, 1})
	r := NewRasterizer()

	masked := newProgram(t, pipeline.WithWriteMask(pipeline.ColorWriteMaskRed))
	bind(masked, 0, mgl32.Vec4{1, 1, 0, 0}, ccwFull)
	r.DrawTriangle(fb, masked)
	if got, want := fb.Color(0, 0), (mgl32.Vec4{1, 0, 1, 1}); !got.ApproxEqual(want) {
		t.Errorf("masked color = %v, want %v", got, want)
	}

	fb.Clear(mgl32.Vec4{0, 0, 1, 1}, 1)
	blended := newProgram(t, pipeline.WithBlendEnabled(true))
	bind(blended, 0, mgl32.Vec4{1, 0, 0, 0.5}, ccwFull)
	r.DrawTriangle(fb, blended)
	if got, want := fb.Color(0, 0), (mgl32.Vec4{0.5, 0, 0.5, 1}); !got.ApproxEqual(want) {
		t.Errorf("blended color = %v, want %v", got, want)
	}
}
