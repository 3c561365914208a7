// Package texture provides CPU-side textures sampled by fragment shaders.
package texture

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Texture is an immutable grid of linear RGBA texels. Row 0 is the top of the image,
// texture coordinate v = 0 addresses the bottom row.
type Texture struct {
	name   string
	width  int
	height int
	texels []mgl32.Vec4
}

// FromImported decodes an imported texture into a Texture.
//
// Parameters:
//   - t: the texture source (path or encoded bytes)
//
// Returns:
//   - *Texture: the decoded texture
//   - error: error if decoding fails
func FromImported(t *common.ImportedTexture) (*Texture, error) {
	px, err := t.Decode()
	if err != nil {
		return nil, err
	}
	return FromPixels(t.Name, px)
}

// FromFile decodes an image file into a Texture.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - *Texture: the decoded texture
//   - error: error if the file cannot be read or decoded
func FromFile(path string) (*Texture, error) {
	return FromImported(&common.ImportedTexture{Name: path, Path: path})
}

// FromPixels converts packed RGBA8 pixels into a Texture.
//
// Parameters:
//   - name: an identifier for logging
//   - px: the pixel data
//
// Returns:
//   - *Texture: the texture
//   - error: error if the pixel buffer does not match its dimensions
func FromPixels(name string, px common.PixelData) (*Texture, error) {
	n := int(px.Width) * int(px.Height)
	if n == 0 || len(px.Pixels) != n*4 {
		return nil, fmt.Errorf("texture %q: %d bytes for %dx%d pixels", name, len(px.Pixels), px.Width, px.Height)
	}
	t := &Texture{
		name:   name,
		width:  int(px.Width),
		height: int(px.Height),
		texels: make([]mgl32.Vec4, n),
	}
	for i := range t.texels {
		p := px.Pixels[i*4 : i*4+4]
		t.texels[i] = mgl32.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
	}
	common.Logger().Debug("texture created", "name", name, "width", t.width, "height", t.height)
	return t, nil
}

// Solid returns a 1x1 texture of a single color.
func Solid(name string, c mgl32.Vec4) *Texture {
	return &Texture{name: name, width: 1, height: 1, texels: []mgl32.Vec4{c}}
}

// Name returns the texture identifier.
func (t *Texture) Name() string {
	return t.name
}

// Width returns the width in texels.
func (t *Texture) Width() int {
	return t.width
}

// Height returns the height in texels.
func (t *Texture) Height() int {
	return t.height
}

// Sample returns the nearest texel to uv. Coordinates outside [0, 1) wrap around.
//
// Parameters:
//   - uv: texture coordinate, v = 0 at the bottom of the image
//
// Returns:
//   - mgl32.Vec4: the texel color
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	u := wrap(uv[0])
	v := wrap(uv[1])
	x := min(int(u*float32(t.width)), t.width-1)
	y := min(int((1-v)*float32(t.height)), t.height-1)
	return t.texels[y*t.width+x]
}

func wrap(f float32) float32 {
	return f - float32(math.Floor(float64(f)))
}
