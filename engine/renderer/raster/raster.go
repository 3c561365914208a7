// Package raster implements a bounding-box triangle rasterizer over pipeline programs.
package raster

import (
	"math"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// minClipW rejects corners at or behind the eye plane.
const minClipW = 1e-6

// Stats counts the work done by a rasterizer since the last ResetStats.
type Stats struct {
	// Triangles is the number of DrawTriangle calls.
	Triangles int
	// Clipped is the number of triangles rejected by the clip tests.
	Clipped int
	// Culled is the number of triangles removed by face culling or zero area.
	Culled int
	// Fragments is the number of fragments that passed the depth test and were shaded.
	Fragments int
	// Discarded is the number of shaded fragments the fragment stage discarded.
	Discarded int
}

// rasterizer is the implementation of the Rasterizer interface.
type rasterizer struct {
	stats Stats
}

// Rasterizer scan-converts one triangle at a time into a framebuffer.
// The three corners must already be bound on the program; the rasterizer runs the vertex stage
// for corners 0, 1 and 2 in order, then the fragment stage once per covered pixel that passes the depth test.
type Rasterizer interface {
	// DrawTriangle draws the triangle whose corners are bound on p.
	//
	// Parameters:
	//   - fb: the target framebuffer
	//   - p: the program holding the bound corners, stages and render state
	DrawTriangle(fb *framebuffer.Framebuffer, p pipeline.Program)

	// Stats returns the counters accumulated since the last reset.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// ResetStats zeroes the counters.
	ResetStats()
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer creates a new Rasterizer.
//
// Returns:
//   - Rasterizer: the rasterizer
func NewRasterizer() Rasterizer {
	return &rasterizer{}
}

func (r *rasterizer) Stats() Stats {
	return r.stats
}

func (r *rasterizer) ResetStats() {
	r.stats = Stats{}
}

func (r *rasterizer) DrawTriangle(fb *framebuffer.Framebuffer, p pipeline.Program) {
	r.stats.Triangles++

	var clip [3]mgl32.Vec4
	for j := range clip {
		clip[j] = p.ShadeVertex(j)
	}

	// Triangles crossing the eye plane are dropped rather than clipped.
	for j := range clip {
		if clip[j][3] <= minClipW {
			r.stats.Clipped++
			return
		}
	}
	if common.TriangleOutside(clip[0], clip[1], clip[2]) {
		r.stats.Clipped++
		return
	}

	var ndc [3]mgl32.Vec3
	var screen [3]mgl32.Vec2
	var invW [3]float32
	width, height := float32(fb.Width()), float32(fb.Height())
	for j := range clip {
		invW[j] = 1 / clip[j][3]
		ndc[j] = clip[j].Vec3().Mul(invW[j])
		screen[j] = mgl32.Vec2{
			(ndc[j][0]*0.5 + 0.5) * width,
			(1 - (ndc[j][1]*0.5 + 0.5)) * height,
		}
	}

	// Winding is measured in NDC, where y points up.
	ndcArea := (ndc[1][0]-ndc[0][0])*(ndc[2][1]-ndc[0][1]) - (ndc[2][0]-ndc[0][0])*(ndc[1][1]-ndc[0][1])
	if ndcArea == 0 {
		r.stats.Culled++
		return
	}
	frontFacing := ndcArea > 0
	if p.FrontFace() == pipeline.FrontFaceCW {
		frontFacing = !frontFacing
	}
	backface := !frontFacing
	switch p.CullMode() {
	case pipeline.CullModeBack:
		if backface {
			r.stats.Culled++
			return
		}
	case pipeline.CullModeFront:
		if frontFacing {
			r.stats.Culled++
			return
		}
	}

	area := edge(screen[0], screen[1], screen[2])
	invArea := 1 / area

	minX := int(math.Floor(float64(min(screen[0][0], screen[1][0], screen[2][0]))))
	maxX := int(math.Ceil(float64(max(screen[0][0], screen[1][0], screen[2][0]))))
	minY := int(math.Floor(float64(min(screen[0][1], screen[1][1], screen[2][1]))))
	maxY := int(math.Ceil(float64(max(screen[0][1], screen[1][1], screen[2][1]))))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, fb.Width()-1), min(maxY, fb.Height()-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			center := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			b0 := edge(screen[1], screen[2], center) * invArea
			b1 := edge(screen[2], screen[0], center) * invArea
			b2 := edge(screen[0], screen[1], center) * invArea
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			depth := (b0*ndc[0][2]+b1*ndc[1][2]+b2*ndc[2][2])*0.5 + 0.5
			if depth < 0 || depth > 1 {
				continue
			}
			if p.DepthTestEnabled() && depth > fb.Depth(x, y) {
				continue
			}

			weights := perspectiveWeights(b0, b1, b2, invW)
			color, discard := p.ShadeFragment(weights, backface)
			r.stats.Fragments++
			if discard {
				r.stats.Discarded++
				continue
			}

			r.writeColor(fb, p, x, y, color)
			if p.DepthWriteEnabled() {
				fb.SetDepth(x, y, depth)
			}
		}
	}
}

// writeColor applies blending and the channel write mask.
func (r *rasterizer) writeColor(fb *framebuffer.Framebuffer, p pipeline.Program, x, y int, src mgl32.Vec4) {
	dst := fb.Color(x, y)
	out := src
	if p.BlendEnabled() {
		a := src[3]
		out = src.Mul(a).Add(dst.Mul(1 - a))
		out[3] = a + dst[3]*(1-a)
	}

	mask := p.WriteMask()
	if mask == pipeline.ColorWriteMaskAll {
		fb.SetColor(x, y, out)
		return
	}
	for c := 0; c < 4; c++ {
		if mask&(1<<c) == 0 {
			out[c] = dst[c]
		}
	}
	fb.SetColor(x, y, out)
}

// edge returns twice the signed area of triangle (a, b, c) in screen space.
func edge(a, b, c mgl32.Vec2) float32 {
	return (c[0]-a[0])*(b[1]-a[1]) - (c[1]-a[1])*(b[0]-a[0])
}

// perspectiveWeights converts screen-space barycentrics into weights that interpolate
// attributes linearly in clip space.
func perspectiveWeights(b0, b1, b2 float32, invW [3]float32) [3]float32 {
	w0, w1, w2 := b0*invW[0], b1*invW[1], b2*invW[2]
	sum := w0 + w1 + w2
	if sum == 0 {
		return [3]float32{b0, b1, b2}
	}
	return [3]float32{w0 / sum, w1 / sum, w2 / sum}
}
