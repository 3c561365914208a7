// Package framebuffer holds the color and depth targets written by the rasterizer.
package framebuffer

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer is a color buffer of linear RGBA values and a depth buffer of the same size.
// Row 0 is the top of the image.
type Framebuffer struct {
	width  int
	height int
	color  []mgl32.Vec4
	depth  []float32
}

// New allocates a framebuffer. Color starts at zero and depth at 1.
//
// Parameters:
//   - width: width in pixels, must be positive
//   - height: height in pixels, must be positive
//
// Returns:
//   - *Framebuffer: the framebuffer
//   - error: error if either dimension is not positive
func New(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	fb := &Framebuffer{
		width:  width,
		height: height,
		color:  make([]mgl32.Vec4, width*height),
		depth:  make([]float32, width*height),
	}
	fb.ClearDepth(1)
	return fb, nil
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() int {
	return fb.width
}

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int {
	return fb.height
}

// Clear overwrites every pixel with color c and every depth sample with d.
func (fb *Framebuffer) Clear(c mgl32.Vec4, d float32) {
	fb.ClearColor(c)
	fb.ClearDepth(d)
}

// ClearColor overwrites every pixel with c.
func (fb *Framebuffer) ClearColor(c mgl32.Vec4) {
	for i := range fb.color {
		fb.color[i] = c
	}
}

// ClearDepth overwrites every depth sample with d.
func (fb *Framebuffer) ClearDepth(d float32) {
	for i := range fb.depth {
		fb.depth[i] = d
	}
}

// InBounds reports whether (x, y) addresses a pixel.
func (fb *Framebuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < fb.width && y < fb.height
}

// Color returns the color at (x, y). The coordinates must be in bounds.
func (fb *Framebuffer) Color(x, y int) mgl32.Vec4 {
	return fb.color[y*fb.width+x]
}

// SetColor writes the color at (x, y). The coordinates must be in bounds.
func (fb *Framebuffer) SetColor(x, y int, c mgl32.Vec4) {
	fb.color[y*fb.width+x] = c
}

// Depth returns the depth at (x, y). The coordinates must be in bounds.
func (fb *Framebuffer) Depth(x, y int) float32 {
	return fb.depth[y*fb.width+x]
}

// SetDepth writes the depth at (x, y). The coordinates must be in bounds.
func (fb *Framebuffer) SetDepth(x, y int, d float32) {
	fb.depth[y*fb.width+x] = d
}

// RGBA8 converts the color buffer into dst as packed 8-bit RGBA, growing dst if needed.
//
// Parameters:
//   - dst: reusable destination buffer, may be nil
//
// Returns:
//   - common.PixelData: the packed pixels, backed by dst when it was large enough
func (fb *Framebuffer) RGBA8(dst []byte) common.PixelData {
	n := fb.width * fb.height * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range fb.color {
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = common.ColorToRGBA8(c)
	}
	return common.PixelData{Pixels: dst, Width: uint32(fb.width), Height: uint32(fb.height)}
}

// ToImage copies the color buffer into a new image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	fb.RGBA8(img.Pix)
	return img
}

// SavePNG writes the color buffer to a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
