// Command viewer loads an OBJ mesh and renders it with the software pipeline,
// either in a window (glfw or ebiten) or headless with a PNG snapshot.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/config"
	"github.com/Carmen-Shannon/oxy-soft/engine"
	"github.com/Carmen-Shannon/oxy-soft/engine/camera"
	"github.com/Carmen-Shannon/oxy-soft/engine/loader"
	"github.com/Carmen-Shannon/oxy-soft/engine/profiler"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

type viewer struct {
	cfg config.Config

	engine    engine.Engine
	profiling bool

	cam     camera.Camera
	program shader.Program
	light   shader.Light
	tex     *texture.Texture
}

func (v *viewer) parseFlags() error {
	configPath := flag.String("config", "", "YAML configuration file")
	meshPath := flag.String("mesh", "", "OBJ mesh to render (overrides mesh.path)")
	texturePath := flag.String("texture", "", "base texture image (overrides mesh.texture)")
	kind := flag.String("shader", "", "shader pair: textured, lambert or normal")
	backend := flag.String("backend", "", "window backend: glfw, ebiten or headless")
	width := flag.Int("width", 0, "window width in pixels")
	height := flag.Int("height", 0, "window height in pixels")
	frames := flag.Int("frames", 0, "frames to render before a headless window closes")
	out := flag.String("out", "", "render headless and write the final frame to this PNG")
	profile := flag.Bool("profile", false, "log frame statistics")
	verbose := flag.Bool("v", false, "debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `viewer - software rasterized OBJ viewer

USAGE:
  viewer [flags] [mesh.obj]

CONTROLS:
  arrows  orbit        W/S  zoom
  A/D     pan sideways Q/E  pan vertically
  R       reset view   P    toggle profiler
  Esc     quit

FLAGS:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	v.cfg = config.Default()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		v.cfg = cfg
	}

	if flag.NArg() > 1 {
		flag.Usage()
		return fmt.Errorf("expected at most one mesh argument, got %d", flag.NArg())
	}
	if flag.NArg() == 1 {
		v.cfg.Mesh.Path = flag.Arg(0)
	}

	v.cfg.Mesh.Path = common.Coalesce(*meshPath, v.cfg.Mesh.Path)
	v.cfg.Mesh.Texture = common.Coalesce(*texturePath, v.cfg.Mesh.Texture)
	v.cfg.Shader.Kind = common.Coalesce(*kind, v.cfg.Shader.Kind)
	v.cfg.Window.Backend = common.Coalesce(*backend, v.cfg.Window.Backend)
	v.cfg.Window.Width = common.Coalesce(*width, v.cfg.Window.Width)
	v.cfg.Window.Height = common.Coalesce(*height, v.cfg.Window.Height)
	v.cfg.Window.MaxFrames = common.Coalesce(*frames, v.cfg.Window.MaxFrames)
	if *out != "" {
		v.cfg.Window.Backend = "headless"
		v.cfg.Window.Snapshot = *out
	}
	v.cfg.Render.Profile = v.cfg.Render.Profile || *profile
	if *verbose {
		v.cfg.Log.Level = "debug"
	}

	if v.cfg.Mesh.Path == "" {
		flag.Usage()
		return errors.New("no mesh given")
	}
	return v.cfg.Validate()
}

func (v *viewer) setupLogger() {
	level, _ := v.cfg.LogLevel()
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func (v *viewer) loadTexture() error {
	if v.cfg.Mesh.Texture == "" {
		v.tex = texture.Solid("white", mgl32.Vec4{1, 1, 1, 1})
		return nil
	}
	tex, err := texture.FromFile(v.cfg.Mesh.Texture)
	if err != nil {
		return fmt.Errorf("failed to load texture: %w", err)
	}
	v.tex = tex
	return nil
}

func (v *viewer) setupProgram() error {
	kind, _ := v.cfg.ShaderKind()
	cull, _ := v.cfg.CullMode()
	front, _ := v.cfg.FrontFace()

	program, err := shader.New(kind, pipeline.WithCullMode(cull), pipeline.WithFrontFace(front))
	if err != nil {
		return err
	}
	v.program = program
	return nil
}

func (v *viewer) setupCamera() {
	ctrl := camera.NewCameraController(
		camera.WithTarget(v.cfg.CameraTarget()),
		camera.WithPosition(v.cfg.CameraPosition()),
	)
	v.cam = camera.NewCamera(
		camera.WithController(ctrl),
		camera.WithFov(mgl32.DegToRad(v.cfg.Camera.Fov)),
		camera.WithAspect(float32(v.cfg.Window.Width)/float32(v.cfg.Window.Height)),
		camera.WithNear(v.cfg.Camera.Near),
		camera.WithFar(v.cfg.Camera.Far),
	)
	v.light = v.cfg.Light()
}

func (v *viewer) keyDown(code uint32) {
	if code == common.KeyP && v.engine != nil {
		v.profiling = !v.profiling
		if v.profiling {
			v.engine.EnableProfiler()
		} else {
			v.engine.DisableProfiler()
		}
		return
	}

	ctrl := v.cam.Controller()
	if ctrl == nil {
		return
	}
	switch code {
	case common.KeyLeft:
		ctrl.OrbitLeft()
	case common.KeyRight:
		ctrl.OrbitRight()
	case common.KeyUp:
		ctrl.OrbitUp()
	case common.KeyDown:
		ctrl.OrbitDown()
	case common.KeyW:
		ctrl.Zoom(1)
	case common.KeyS:
		ctrl.Zoom(-1)
	case common.KeyA:
		ctrl.PanRight(-1)
	case common.KeyD:
		ctrl.PanRight(1)
	case common.KeyQ:
		ctrl.PanUp(-1)
	case common.KeyE:
		ctrl.PanUp(1)
	case common.KeyR:
		ctrl.Reset()
	}
}

// frame refreshes the camera matrices and uniforms before the mesh is drawn.
func (v *viewer) frame(float32) {
	v.cam.Update()
	shader.SetupUniforms(v.program.Uniforms(), v.cam, v.light, v.tex)
}

func (v *viewer) run() (err error) {
	if err := v.parseFlags(); err != nil {
		return err
	}
	v.setupLogger()

	l := loader.NewLoader(loader.BackendTypeOBJ)
	defer func() {
		if relErr := l.ReleaseAll(); relErr != nil && err == nil {
			err = relErr
		}
	}()

	mesh, err := l.Load(v.cfg.Mesh.Path)
	if err != nil {
		return err
	}

	if err := v.loadTexture(); err != nil {
		return err
	}
	if err := v.setupProgram(); err != nil {
		return err
	}
	v.setupCamera()

	backend, _ := v.cfg.WindowBackend()
	win := window.NewWindow(backend,
		window.WithTitle(v.cfg.Window.Title),
		window.WithWidth(v.cfg.Window.Width),
		window.WithHeight(v.cfg.Window.Height),
		window.WithVSync(v.cfg.Window.VSync),
		window.WithMaxFrames(v.cfg.Window.MaxFrames),
		window.WithSnapshotPath(v.cfg.Window.Snapshot),
	)
	defer func() {
		if closeErr := win.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close window: %w", closeErr)
		}
	}()
	win.SetKeyDownCallback(v.keyDown)

	v.profiling = v.cfg.Render.Profile
	v.engine = engine.NewEngine(
		engine.WithWindow(win),
		engine.WithCamera(v.cam),
		engine.WithMesh(mesh),
		engine.WithProgram(v.program),
		engine.WithClearColor(v.cfg.ClearColor()),
		engine.WithClearDepth(v.cfg.Render.ClearDepth),
		engine.WithFrameCallback(v.frame),
		engine.WithRenderFrameLimit(v.cfg.Render.FrameLimit),
		engine.WithProfiling(v.cfg.Render.Profile),
		engine.WithProfiler(profiler.NewProfiler(
			profiler.WithInterval(v.cfg.Render.ProfileInterval.Duration()),
		)),
	)

	if err := v.engine.Run(); err != nil {
		return err
	}
	common.Logger().Info("viewer finished", "frames", v.engine.FrameCount())
	return nil
}

func main() {
	v := &viewer{}

	if err := v.run(); err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
}
