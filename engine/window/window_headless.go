package window

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
)

// headlessBackend renders offscreen. It stops running after maxFrames presents and
// keeps a copy of the last frame.
type headlessBackend struct {
	parent  *engineWindow
	frames  int
	closed  bool
	last    []byte
	lastW   uint32
	lastH   uint32
	hasLast bool
}

func (b *headlessBackend) open(w *engineWindow) error {
	b.parent = w
	return nil
}

func (b *headlessBackend) isRunning() bool {
	if b.closed {
		return false
	}
	return b.parent.maxFrames == 0 || b.frames < b.parent.maxFrames
}

func (b *headlessBackend) pollEvents() {}

func (b *headlessBackend) present(fb *framebuffer.Framebuffer) error {
	px := fb.RGBA8(b.last)
	b.last = px.Pixels
	b.lastW = px.Width
	b.lastH = px.Height
	b.hasLast = true
	b.frames++
	return nil
}

func (b *headlessBackend) LastFrame() (common.PixelData, bool) {
	if !b.hasLast {
		return common.PixelData{}, false
	}
	pixels := make([]byte, len(b.last))
	copy(pixels, b.last)
	return common.PixelData{Pixels: pixels, Width: b.lastW, Height: b.lastH}, true
}

// close writes the snapshot if one was requested. Closing twice is a no-op.
func (b *headlessBackend) close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	path := b.parent.snapshotPath
	if path == "" {
		return nil
	}
	if !b.hasLast {
		return fmt.Errorf("no frame presented, snapshot %s not written", path)
	}
	if err := writePNG(path, b.last, int(b.lastW), int(b.lastH)); err != nil {
		return err
	}
	common.Logger().Info("snapshot written", "path", path, "frames", b.frames)
	return nil
}

func writePNG(path string, pixels []byte, width, height int) error {
	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
