package window

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenKeys maps Ebiten keys onto the shared virtual key codes.
var ebitenKeys = map[ebiten.Key]uint32{
	ebiten.KeyW:          common.KeyW,
	ebiten.KeyA:          common.KeyA,
	ebiten.KeyS:          common.KeyS,
	ebiten.KeyD:          common.KeyD,
	ebiten.KeyQ:          common.KeyQ,
	ebiten.KeyE:          common.KeyE,
	ebiten.KeyP:          common.KeyP,
	ebiten.KeyR:          common.KeyR,
	ebiten.KeySpace:      common.KeySpace,
	ebiten.KeyEscape:     common.KeyEsc,
	ebiten.KeyArrowRight: common.KeyRight,
	ebiten.KeyArrowLeft:  common.KeyLeft,
	ebiten.KeyArrowDown:  common.KeyDown,
	ebiten.KeyArrowUp:    common.KeyUp,
}

// keyRepeatDelay is the number of ticks a key must be held before it starts repeating.
const keyRepeatDelay = 15

// ebitenBackend displays frames through Ebiten. Ebiten owns the main loop, so frames are
// produced from Update via Loop and the latest one is drawn in Draw.
type ebitenBackend struct {
	parent  *engineWindow
	running bool

	step func() error

	pixels  []byte
	fbImg   *ebiten.Image
	fbW     int
	fbH     int
	keyBuf  []ebiten.Key
	outside [2]int
}

func (b *ebitenBackend) open(w *engineWindow) error {
	b.parent = w
	b.running = true
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if w.minWidth > 0 || w.minHeight > 0 {
		ebiten.SetWindowSizeLimits(w.minWidth, w.minHeight, -1, -1)
	}
	ebiten.SetVsyncEnabled(w.vsync)
	return nil
}

func (b *ebitenBackend) isRunning() bool {
	return b.running
}

// pollEvents forwards the keys Ebiten recorded for the current tick.
// Held keys repeat every other tick after keyRepeatDelay, like GLFW key repeat.
func (b *ebitenBackend) pollEvents() {
	b.keyBuf = inpututil.AppendPressedKeys(b.keyBuf[:0])
	for _, k := range b.keyBuf {
		d := inpututil.KeyPressDuration(k)
		if d != 1 && (d < keyRepeatDelay || d%2 != 0) {
			continue
		}
		if k == ebiten.KeyEscape {
			b.running = false
			return
		}
		if code, ok := ebitenKeys[k]; ok {
			b.parent.keyDown(code)
		}
	}
	b.keyBuf = inpututil.AppendJustReleasedKeys(b.keyBuf[:0])
	for _, k := range b.keyBuf {
		if code, ok := ebitenKeys[k]; ok {
			b.parent.keyUp(code)
		}
	}
}

// present copies the frame so Draw can upload it on Ebiten's schedule.
func (b *ebitenBackend) present(fb *framebuffer.Framebuffer) error {
	px := fb.RGBA8(b.pixels)
	b.pixels = px.Pixels
	b.fbW = int(px.Width)
	b.fbH = int(px.Height)
	return nil
}

func (b *ebitenBackend) close() error {
	b.running = false
	return nil
}

// Loop hands the main loop to Ebiten until the window closes or step fails.
func (b *ebitenBackend) Loop(step func() error) error {
	b.step = step
	err := ebiten.RunGame(b)
	b.running = false
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (b *ebitenBackend) Update() error {
	if !b.running {
		return ebiten.Termination
	}
	if b.step != nil {
		if err := b.step(); err != nil {
			return err
		}
	}
	if !b.running {
		return ebiten.Termination
	}
	return nil
}

func (b *ebitenBackend) Draw(screen *ebiten.Image) {
	if b.pixels == nil {
		return
	}
	if b.fbImg == nil || b.fbImg.Bounds().Dx() != b.fbW || b.fbImg.Bounds().Dy() != b.fbH {
		if b.fbImg != nil {
			b.fbImg.Deallocate()
		}
		b.fbImg = ebiten.NewImage(b.fbW, b.fbH)
	}
	b.fbImg.WritePixels(b.pixels)

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(b.fbW), float64(sh)/float64(b.fbH))
	screen.DrawImage(b.fbImg, op)
}

// Layout reports the outside size as the logical screen so a window resize reaches the engine
// as a resize event.
func (b *ebitenBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (b.outside != [2]int{outsideWidth, outsideHeight}) {
		b.outside = [2]int{outsideWidth, outsideHeight}
		b.parent.resized(outsideWidth, outsideHeight)
	}
	return b.parent.width, b.parent.height
}
