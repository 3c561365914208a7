// package common contains plain data types and helpers shared across the engine. They are not interface-wrapped structs, just plain
// structs and functions that express commonly used data.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PixelData holds tightly packed RGBA8 pixels (4 bytes per pixel, row-major, top row first).
// It is the hand-off format between decoded images, the framebuffer, and presentation backends.
type PixelData struct {
	// Pixels is the RGBA byte slice, len(Pixels) == Width*Height*4.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// ImportedTexture represents an image referenced by a model or configuration.
// Either Data holds encoded image bytes, or Path names an image file on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "base").
	Name string

	// Path is the file path of the encoded image (empty for in-memory data).
	Path string

	// Data contains encoded image bytes (PNG, JPEG, BMP, TIFF or WebP).
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either the in-memory Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - PixelData: decoded RGBA pixels with their dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (PixelData, error) {
	if t == nil {
		return PixelData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return PixelData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return PixelData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return PixelData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return PixelData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return PixelData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}, nil
}
