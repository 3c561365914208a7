package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

func TestParseEmptyUsesDefaults(t *testing.T) {
	for _, doc := range []string{"", "\n"} {
		cfg, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}
		want := Default()
		if cfg.Window != want.Window {
			t.Errorf("Parse(%q).Window = %+v, want %+v", doc, cfg.Window, want.Window)
		}
		if cfg.Camera != want.Camera {
			t.Errorf("Parse(%q).Camera = %+v, want %+v", doc, cfg.Camera, want.Camera)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("window = %dx%d, want 800x600", cfg.Window.Width, cfg.Window.Height)
	}
	if got := cfg.CameraPosition(); got != (mgl32.Vec3{0, 0, 1.5}) {
		t.Errorf("CameraPosition() = %v, want [0 0 1.5]", got)
	}
	if got := cfg.ClearColor(); got != (mgl32.Vec4{0, 0, 0, 0}) {
		t.Errorf("ClearColor() = %v, want transparent black", got)
	}
	if cfg.Render.ClearDepth != 1 {
		t.Errorf("ClearDepth = %v, want 1", cfg.Render.ClearDepth)
	}
	if got := cfg.Render.ProfileInterval.Duration(); got != time.Second {
		t.Errorf("ProfileInterval = %v, want 1s", got)
	}
	light := cfg.Light()
	want := shader.DefaultLight()
	if !mgl32.FloatEqual(light.Theta, want.Theta) || !mgl32.FloatEqual(light.Phi, want.Phi) {
		t.Errorf("Light() = %+v, want %+v", light, want)
	}
}

func TestParseOverrides(t *testing.T) {
	doc := `
window:
  backend: headless
  width: 320
  height: 240
  max_frames: 3
  snapshot: out.png
mesh:
  path: models/cube.obj
shader:
  kind: Lambert
  cull: back
  front_face: cw
camera:
  position: [1, 2, 3]
  fov: 45
light:
  theta: 90
  phi: 0
render:
  clear_color: [0.1, 0.2, 0.3, 1]
  frame_limit: 30
  profile: true
  profile_interval: 250ms
log:
  level: debug
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	backend, _ := cfg.WindowBackend()
	if backend != window.BackendTypeHeadless {
		t.Errorf("WindowBackend() = %v, want headless", backend)
	}
	if cfg.Window.Width != 320 || cfg.Window.Height != 240 || cfg.Window.MaxFrames != 3 {
		t.Errorf("Window = %+v", cfg.Window)
	}
	// Unset keys in a partially specified section keep their defaults.
	if cfg.Window.Title != "oxy-soft" {
		t.Errorf("Window.Title = %q, want default", cfg.Window.Title)
	}
	if cfg.Camera.Near != 0.1 {
		t.Errorf("Camera.Near = %v, want default 0.1", cfg.Camera.Near)
	}
	kind, _ := cfg.ShaderKind()
	if kind != shader.KindLambert {
		t.Errorf("ShaderKind() = %v, want lambert", kind)
	}
	cull, _ := cfg.CullMode()
	if cull != pipeline.CullModeBack {
		t.Errorf("CullMode() = %v, want back", cull)
	}
	ff, _ := cfg.FrontFace()
	if ff != pipeline.FrontFaceCW {
		t.Errorf("FrontFace() = %v, want cw", ff)
	}
	if got := cfg.CameraPosition(); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("CameraPosition() = %v, want [1 2 3]", got)
	}
	if got := cfg.Render.ProfileInterval.Duration(); got != 250*time.Millisecond {
		t.Errorf("ProfileInterval = %v, want 250ms", got)
	}
	level, _ := cfg.LogLevel()
	if level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", level)
	}
	if !mgl32.FloatEqual(cfg.Light().Theta, mgl32.DegToRad(90)) {
		t.Errorf("Light().Theta = %v, want pi/2", cfg.Light().Theta)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "window:\n  colour: red\n", "parsing config"},
		{"bad yaml", "window: [", "parsing config"},
		{"bad duration", "render:\n  profile_interval: soon\n", "invalid duration"},
		{"backend", "window:\n  backend: vulkan\n", "window.backend"},
		{"size", "window:\n  width: 0\n", "window size"},
		{"max frames", "window:\n  max_frames: -1\n", "max_frames"},
		{"shader", "shader:\n  kind: phong\n", "unknown shader kind"},
		{"cull", "shader:\n  cull: sideways\n", "shader.cull"},
		{"front face", "shader:\n  front_face: up\n", "shader.front_face"},
		{"fov", "camera:\n  fov: 180\n", "camera.fov"},
		{"near far", "camera:\n  near: 10\n  far: 1\n", "near"},
		{"eye at target", "camera:\n  position: [0, 0, 0]\n", "must differ"},
		{"clear depth", "render:\n  clear_depth: 2\n", "clear_depth"},
		{"frame limit", "render:\n  frame_limit: -5\n", "frame_limit"},
		{"log level", "log:\n  level: loud\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("Parse() error = nil, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseUnknownShaderKindWraps(t *testing.T) {
	_, err := Parse([]byte("shader:\n  kind: toon\n"))
	if !errors.Is(err, shader.ErrUnknownKind) {
		t.Errorf("Parse() error = %v, want ErrUnknownKind", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	if err := os.WriteFile(path, []byte("mesh:\n  path: a.obj\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mesh.Path != "a.obj" {
		t.Errorf("Mesh.Path = %q, want a.obj", cfg.Mesh.Path)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("window:\n  width: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("Load(bad) error = %v, want error naming the file", err)
	}
}

func TestExampleConfigParses(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "cmd", "viewer", "viewer.yaml"))
	if err != nil {
		t.Fatalf("Load(viewer.yaml) error = %v", err)
	}
	if cfg.Mesh.Path != "assets/model.obj" {
		t.Errorf("Mesh.Path = %q, want assets/model.obj", cfg.Mesh.Path)
	}
	if !cfg.Window.VSync {
		t.Errorf("Window.VSync = false, want true")
	}
}
