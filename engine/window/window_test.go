package window

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestFramebuffer(t *testing.T, w, h int, c mgl32.Vec4) *framebuffer.Framebuffer {
	t.Helper()
	fb, err := framebuffer.New(w, h)
	if err != nil {
		t.Fatalf("framebuffer.New() error = %v", err)
	}
	fb.ClearColor(c)
	return fb
}

func TestHeadlessFrameBudget(t *testing.T) {
	tests := []struct {
		name      string
		maxFrames int
		presents  int
		running   bool
	}{
		{"default single frame", 1, 1, false},
		{"budget not reached", 3, 2, true},
		{"budget reached", 3, 3, false},
		{"unlimited", 0, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(BackendTypeHeadless, WithWidth(4), WithHeight(2), WithMaxFrames(tt.maxFrames))
			fb := newTestFramebuffer(t, 4, 2, mgl32.Vec4{1, 0, 0, 1})
			for i := 0; i < tt.presents; i++ {
				if err := w.Present(fb); err != nil {
					t.Fatalf("Present() #%d error = %v", i, err)
				}
				w.PollEvents()
			}
			if w.IsRunning() != tt.running {
				t.Errorf("IsRunning() = %v, want %v", w.IsRunning(), tt.running)
			}
		})
	}
}

func TestHeadlessPresentAfterBudget(t *testing.T) {
	w := NewWindow(BackendTypeHeadless)
	fb := newTestFramebuffer(t, 2, 2, mgl32.Vec4{})
	if err := w.Present(fb); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if err := w.Present(fb); !errors.Is(err, ErrClosed) {
		t.Errorf("Present() after budget error = %v, want ErrClosed", err)
	}
}

func TestHeadlessLastFrame(t *testing.T) {
	w := NewWindow(BackendTypeHeadless, WithWidth(3), WithHeight(2))
	rec, ok := w.(FrameRecorder)
	if !ok {
		t.Fatal("headless window does not implement FrameRecorder")
	}
	if _, ok := rec.LastFrame(); ok {
		t.Error("LastFrame() ok = true before any Present")
	}

	fb := newTestFramebuffer(t, 3, 2, mgl32.Vec4{0, 1, 0, 1})
	if err := w.Present(fb); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	px, ok := rec.LastFrame()
	if !ok {
		t.Fatal("LastFrame() ok = false after Present")
	}
	if px.Width != 3 || px.Height != 2 || len(px.Pixels) != 3*2*4 {
		t.Fatalf("LastFrame() = %dx%d with %d bytes, want 3x2 with 24 bytes", px.Width, px.Height, len(px.Pixels))
	}
	if got := px.Pixels[0:4]; got[0] != 0 || got[1] != 255 || got[2] != 0 || got[3] != 255 {
		t.Errorf("first pixel = %v, want [0 255 0 255]", got)
	}

	// The returned copy must not alias the backend buffer.
	px.Pixels[0] = 9
	again, _ := rec.LastFrame()
	if again.Pixels[0] != 0 {
		t.Errorf("LastFrame() aliases internal buffer")
	}
}

func TestHeadlessSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	w := NewWindow(BackendTypeHeadless, WithWidth(5), WithHeight(4), WithSnapshotPath(path))
	if err := w.Present(newTestFramebuffer(t, 5, 4, mgl32.Vec4{0, 0, 1, 1})); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 4 {
		t.Errorf("snapshot size = %dx%d, want 5x4", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(2, 2).RGBA()
	if r != 0 || g != 0 || b != 0xffff || a != 0xffff {
		t.Errorf("snapshot pixel = (%d, %d, %d, %d), want opaque blue", r, g, b, a)
	}
}

func TestHeadlessSnapshotWithoutFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	w := NewWindow(BackendTypeHeadless, WithSnapshotPath(path))
	if err := w.Close(); err == nil {
		t.Error("Close() error = nil, want error when no frame was presented")
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}
}

func TestLoopStopsWhenBudgetSpent(t *testing.T) {
	w := NewWindow(BackendTypeHeadless, WithMaxFrames(4))
	fb := newTestFramebuffer(t, 1, 1, mgl32.Vec4{})
	steps := 0
	err := w.(Looper).Loop(func() error {
		steps++
		return w.Present(fb)
	})
	if err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	if steps != 4 {
		t.Errorf("Loop() ran %d steps, want 4", steps)
	}
}

func TestLoopReturnsStepError(t *testing.T) {
	w := NewWindow(BackendTypeHeadless, WithMaxFrames(0))
	boom := errors.New("boom")
	if err := w.(Looper).Loop(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Loop() error = %v, want %v", err, boom)
	}
}

func TestResizeCallback(t *testing.T) {
	w, err := newWindow(BackendTypeHeadless, WithWidth(10), WithHeight(10))
	if err != nil {
		t.Fatalf("newWindow() error = %v", err)
	}
	var gotW, gotH, calls int
	w.SetResizeCallback(func(width, height int) {
		gotW, gotH = width, height
		calls++
	})
	w.resized(10, 10)
	w.resized(20, 15)
	if calls != 1 || gotW != 20 || gotH != 15 {
		t.Errorf("resize callback calls = %d with %dx%d, want 1 with 20x15", calls, gotW, gotH)
	}
	if w.Width() != 20 || w.Height() != 15 {
		t.Errorf("size = %dx%d, want 20x15", w.Width(), w.Height())
	}
}

func TestKeyCallbacks(t *testing.T) {
	w, err := newWindow(BackendTypeHeadless)
	if err != nil {
		t.Fatalf("newWindow() error = %v", err)
	}
	w.keyDown(1) // no callback registered yet
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })
	w.keyDown(65)
	w.keyUp(65)
	if len(down) != 1 || down[0] != 65 || len(up) != 1 || up[0] != 65 {
		t.Errorf("key events down = %v, up = %v, want [65] and [65]", down, up)
	}
}

func TestNewWindowErrors(t *testing.T) {
	if _, err := newWindow(BackendTypeHeadless, WithWidth(0)); err == nil {
		t.Error("newWindow() with zero width error = nil")
	}
	if _, err := newWindow(BackendType(99)); err == nil {
		t.Error("newWindow() with unknown backend error = nil")
	}
	defer func() {
		if recover() == nil {
			t.Error("NewWindow() did not panic on invalid size")
		}
	}()
	NewWindow(BackendTypeHeadless, WithHeight(-1))
}

func TestWindowDefaults(t *testing.T) {
	w := NewWindow(BackendTypeHeadless, WithTitle("viewer"))
	if w.Title() != "viewer" || w.Width() != 800 || w.Height() != 600 {
		t.Errorf("window = %q %dx%d, want \"viewer\" 800x600", w.Title(), w.Width(), w.Height())
	}
}
