package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-soft/engine/camera"
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/Carmen-Shannon/oxy-soft/engine/profiler"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/raster"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeWindow runs for a fixed number of polls and records the calls it receives.
type fakeWindow struct {
	log        *[]string
	polls      int
	maxPolls   int
	presentErr error
	onResize   func(width, height int)
	width      int
	height     int
}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetKeyDownCallback(func(uint32))              {}
func (w *fakeWindow) SetKeyUpCallback(func(uint32))                {}
func (w *fakeWindow) IsRunning() bool                              { return w.polls < w.maxPolls }
func (w *fakeWindow) Close() error                                 { return nil }
func (w *fakeWindow) Title() string                                { return "fake" }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) PollEvents() {
	*w.log = append(*w.log, "poll")
	w.polls++
}

func (w *fakeWindow) Present(*framebuffer.Framebuffer) error {
	*w.log = append(*w.log, "present")
	return w.presentErr
}

// fakeRasterizer records draws and checks the buffers were cleared before the first one.
type fakeRasterizer struct {
	log       *[]string
	clearSeen []mgl32.Vec4
}

func (r *fakeRasterizer) DrawTriangle(fb *framebuffer.Framebuffer, p pipeline.Program) {
	*r.log = append(*r.log, "draw")
	r.clearSeen = append(r.clearSeen, fb.Color(0, 0))
	// dirty the buffer so the next frame's clear is observable
	fb.SetColor(0, 0, mgl32.Vec4{9, 9, 9, 9})
	fb.SetDepth(0, 0, 0)
}
func (r *fakeRasterizer) Stats() raster.Stats { return raster.Stats{} }
func (r *fakeRasterizer) ResetStats()         {}

type recAttribs struct{ Position mgl32.Vec3 }
type recVaryings struct{}
type recUniforms struct{}

func recordingProgram(t *testing.T, log *[]string) pipeline.Program {
	t.Helper()
	p, err := pipeline.NewPipeline("rec", pipeline.Stages[recAttribs, recVaryings, recUniforms]{
		Bind: func(a *recAttribs, v model.Vertex) {
			a.Position = v.Position
			*log = append(*log, fmt.Sprintf("bind %v", v.Position.X()))
		},
		Vertex: func(*recAttribs, *recVaryings, *recUniforms) mgl32.Vec4 { return mgl32.Vec4{} },
		Fragment: func(*recVaryings, *recUniforms, *bool, bool) mgl32.Vec4 {
			return mgl32.Vec4{}
		},
		Interpolate: func(*recVaryings, [3]*recVaryings, [3]float32) {},
	})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

// twoTriangles has corner X coordinates 0..5 so bind order is visible in the log.
func twoTriangles(t *testing.T) model.Mesh {
	t.Helper()
	m, err := model.BuildMesh(model.Geometry{
		Positions:       []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0}},
		Texcoords:       []mgl32.Vec2{{0, 0}},
		Normals:         []mgl32.Vec3{{0, 0, 1}},
		PositionIndices: []int{0, 1, 2, 3, 4, 5},
		TexcoordIndices: []int{0, 0, 0, 0, 0, 0},
		NormalIndices:   []int{0, 0, 0, 0, 0, 0},
	})
	if err != nil {
		t.Fatalf("BuildMesh() error = %v", err)
	}
	return m
}

func TestFrameOrder(t *testing.T) {
	var log []string
	win := &fakeWindow{log: &log, maxPolls: 1, width: 4, height: 4}
	rast := &fakeRasterizer{log: &log}
	e := NewEngine(
		WithWindow(win),
		WithRasterizer(rast),
		WithMesh(twoTriangles(t)),
		WithProgram(recordingProgram(t, &log)),
		WithFrameCallback(func(float32) { log = append(log, "callback") }),
	)

	if err := e.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	want := []string{
		"callback",
		"bind 0", "bind 1", "bind 2", "draw",
		"bind 3", "bind 4", "bind 5", "draw",
		"present", "poll",
	}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("frame events = %v, want %v", log, want)
	}
	if e.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", e.FrameCount())
	}
}

func TestFrameClearsBuffers(t *testing.T) {
	var log []string
	win := &fakeWindow{log: &log, maxPolls: 2, width: 2, height: 2}
	rast := &fakeRasterizer{log: &log}
	clear := mgl32.Vec4{0.1, 0.2, 0.3, 0.4}
	e := NewEngine(
		WithWindow(win),
		WithRasterizer(rast),
		WithMesh(twoTriangles(t)),
		WithProgram(recordingProgram(t, &log)),
		WithClearColor(clear),
		WithClearDepth(0.75),
	)
	for range 2 {
		if err := e.Frame(); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	// The first draw of each frame must see the clear color, the second sees the dirtied pixel.
	if rast.clearSeen[0] != clear || rast.clearSeen[2] != clear {
		t.Errorf("first draw per frame saw %v and %v, want %v", rast.clearSeen[0], rast.clearSeen[2], clear)
	}
	if got := e.Framebuffer().Depth(1, 1); got != 0.75 {
		t.Errorf("Depth(1, 1) = %v, want 0.75", got)
	}
	if e.Framebuffer().Width() != 2 || e.Framebuffer().Height() != 2 {
		t.Errorf("framebuffer = %dx%d, want window size 2x2", e.Framebuffer().Width(), e.Framebuffer().Height())
	}
}

func TestRunUntilWindowStops(t *testing.T) {
	var log []string
	win := &fakeWindow{log: &log, maxPolls: 3, width: 2, height: 2}
	e := NewEngine(WithWindow(win), WithRasterizer(&fakeRasterizer{log: &log}))
	if err := e.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3", e.FrameCount())
	}
}

func TestWithProfiler(t *testing.T) {
	custom := profiler.NewProfiler()
	e := NewEngine(WithProfiler(custom)).(*engine)
	if e.profiler != custom {
		t.Errorf("WithProfiler() did not install the profiler")
	}

	e = NewEngine(WithProfiler(nil)).(*engine)
	if e.profiler == nil {
		t.Errorf("WithProfiler(nil) removed the default profiler")
	}
}

func TestRunWithoutWindow(t *testing.T) {
	e := NewEngine()
	if err := e.Run(); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Run() error = %v, want ErrNoWindow", err)
	}
	if err := e.Frame(); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Frame() error = %v, want ErrNoWindow", err)
	}
}

func TestPresentErrors(t *testing.T) {
	boom := errors.New("device lost")
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"closed window is not an error", window.ErrClosed, nil},
		{"presentation failure stops run", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			win := &fakeWindow{log: &log, maxPolls: 2, width: 2, height: 2, presentErr: tt.err}
			e := NewEngine(WithWindow(win), WithRasterizer(&fakeRasterizer{log: &log}))
			err := e.Run()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Run() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReleasedMeshDrawsNothing(t *testing.T) {
	var log []string
	m := twoTriangles(t)
	if err := m.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	win := &fakeWindow{log: &log, maxPolls: 1, width: 2, height: 2}
	e := NewEngine(WithWindow(win), WithRasterizer(&fakeRasterizer{log: &log}), WithMesh(m), WithProgram(recordingProgram(t, &log)))
	if err := e.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if fmt.Sprint(log) != fmt.Sprint([]string{"present", "poll"}) {
		t.Errorf("frame events = %v, want [present poll]", log)
	}
}

func TestResize(t *testing.T) {
	var log []string
	win := &fakeWindow{log: &log, maxPolls: 1, width: 4, height: 4}
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))
	var notified [2]int
	e := NewEngine(
		WithWindow(win),
		WithCamera(cam),
		WithRasterizer(&fakeRasterizer{log: &log}),
		WithResizeCallback(func(w, h int) { notified = [2]int{w, h} }),
	)
	win.onResize(200, 100)
	if fb := e.Framebuffer(); fb == nil || fb.Width() != 200 || fb.Height() != 100 {
		t.Fatalf("Framebuffer() after resize = %v, want 200x100", fb)
	}
	if cam.Aspect() != 2 {
		t.Errorf("camera Aspect() = %v, want 2", cam.Aspect())
	}
	if notified != [2]int{200, 100} {
		t.Errorf("resize callback got %v, want [200 100]", notified)
	}

	win.onResize(0, 100)
	if e.Framebuffer().Width() != 200 {
		t.Errorf("zero-size resize replaced the framebuffer")
	}
}

func TestFrameRendersThroughHeadlessWindow(t *testing.T) {
	win := window.NewWindow(window.BackendTypeHeadless, window.WithWidth(8), window.WithHeight(8))
	prog, err := shader.New(shader.KindNormal)
	if err != nil {
		t.Fatalf("shader.New() error = %v", err)
	}
	// One oversized triangle in clip space covering the whole viewport.
	mesh, err := model.BuildMesh(model.Geometry{
		Positions:       []mgl32.Vec3{{-1, -1, 0}, {3, -1, 0}, {-1, 3, 0}},
		Texcoords:       []mgl32.Vec2{{0, 0}},
		Normals:         []mgl32.Vec3{{0, 0, 1}},
		PositionIndices: []int{0, 1, 2},
		TexcoordIndices: []int{0, 0, 0},
		NormalIndices:   []int{0, 0, 0},
	})
	if err != nil {
		t.Fatalf("BuildMesh() error = %v", err)
	}

	e := NewEngine(WithWindow(win), WithMesh(mesh), WithProgram(prog), WithProfiling(true))
	if err := e.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.FrameCount() != 1 {
		t.Fatalf("FrameCount() = %d, want 1", e.FrameCount())
	}

	px, ok := win.(window.FrameRecorder).LastFrame()
	if !ok {
		t.Fatal("LastFrame() ok = false")
	}
	i := (4*8 + 4) * 4
	got := px.Pixels[i : i+4]
	if got[0] != 128 || got[1] != 128 || got[2] != 255 || got[3] != 255 {
		t.Errorf("center pixel = %v, want [128 128 255 255]", got)
	}
	if s := e.Rasterizer().Stats(); s.Triangles != 0 {
		t.Errorf("Stats() after frame = %+v, want reset", s)
	}
}
