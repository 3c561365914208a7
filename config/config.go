// Package config loads the viewer configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-soft/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config is the complete viewer configuration.
type Config struct {
	Window      WindowConfig `yaml:"window"`
	Mesh        MeshConfig   `yaml:"mesh"`
	Shader      ShaderConfig `yaml:"shader"`
	Camera      CameraConfig `yaml:"camera"`
	LightAngles LightConfig  `yaml:"light"`
	Render      RenderConfig `yaml:"render"`
	Log         LogConfig    `yaml:"log"`
}

// WindowConfig selects and sizes the presentation backend.
type WindowConfig struct {
	Backend   string `yaml:"backend"` // glfw, ebiten or headless
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	VSync     bool   `yaml:"vsync"`
	MaxFrames int    `yaml:"max_frames"` // headless only
	Snapshot  string `yaml:"snapshot"`   // headless only, PNG written on exit
}

// MeshConfig names the geometry and base texture files.
type MeshConfig struct {
	Path    string `yaml:"path"`
	Texture string `yaml:"texture"` // empty draws untextured white
}

// ShaderConfig selects the shader pair and fixed-function state.
type ShaderConfig struct {
	Kind      string `yaml:"kind"`       // textured, lambert or normal
	Cull      string `yaml:"cull"`       // none, front or back
	FrontFace string `yaml:"front_face"` // ccw or cw
}

// CameraConfig places the perspective camera. Angles are in degrees.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// LightConfig orients the directional light. Angles are in degrees.
type LightConfig struct {
	Theta float32 `yaml:"theta"`
	Phi   float32 `yaml:"phi"`
}

// RenderConfig controls the frame loop.
type RenderConfig struct {
	ClearColor      [4]float32 `yaml:"clear_color"`
	ClearDepth      float32    `yaml:"clear_depth"`
	FrameLimit      float64    `yaml:"frame_limit"` // frames per second, 0 = uncapped
	Profile         bool       `yaml:"profile"`
	ProfileInterval Duration   `yaml:"profile_interval"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration of the reference viewer: an 800x600 window, the camera 1.5 units
// down +Z looking at the origin, and the light at 45° azimuth and 45° from the zenith.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Backend:   "glfw",
			Title:     "oxy-soft",
			Width:     800,
			Height:    600,
			MaxFrames: 1,
		},
		Shader: ShaderConfig{
			Kind:      "textured",
			Cull:      "none",
			FrontFace: "ccw",
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 0, 1.5},
			Target:   [3]float32{0, 0, 0},
			Fov:      60,
			Near:     0.1,
			Far:      10000,
		},
		LightAngles: LightConfig{
			Theta: 45,
			Phi:   45,
		},
		Render: RenderConfig{
			ClearColor:      [4]float32{0, 0, 0, 0},
			ClearDepth:      1,
			ProfileInterval: Duration(time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document, may be empty
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the document cannot be parsed or validated
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that has a closed set of values or a required range.
//
// Returns:
//   - error: the first problem found, or nil
func (c Config) Validate() error {
	if _, err := c.WindowBackend(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MaxFrames < 0 {
		return fmt.Errorf("window.max_frames %d must not be negative", c.Window.MaxFrames)
	}
	if _, err := c.ShaderKind(); err != nil {
		return err
	}
	if _, err := c.CullMode(); err != nil {
		return err
	}
	if _, err := c.FrontFace(); err != nil {
		return err
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("camera.fov %v must be in (0, 180)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera near %v and far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Position == c.Camera.Target {
		return fmt.Errorf("camera position and target must differ")
	}
	if c.Render.ClearDepth < 0 || c.Render.ClearDepth > 1 {
		return fmt.Errorf("render.clear_depth %v must be in [0, 1]", c.Render.ClearDepth)
	}
	if c.Render.FrameLimit < 0 {
		return fmt.Errorf("render.frame_limit %v must not be negative", c.Render.FrameLimit)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// WindowBackend resolves the configured window backend.
func (c Config) WindowBackend() (window.BackendType, error) {
	switch strings.ToLower(c.Window.Backend) {
	case "glfw":
		return window.BackendTypeGLFW, nil
	case "ebiten":
		return window.BackendTypeEbiten, nil
	case "headless":
		return window.BackendTypeHeadless, nil
	}
	return 0, fmt.Errorf("unknown window.backend %q", c.Window.Backend)
}

// ShaderKind resolves the configured shader pair.
func (c Config) ShaderKind() (shader.Kind, error) {
	return shader.ParseKind(c.Shader.Kind)
}

// CullMode resolves the configured face culling.
func (c Config) CullMode() (pipeline.CullMode, error) {
	switch strings.ToLower(c.Shader.Cull) {
	case "none", "":
		return pipeline.CullModeNone, nil
	case "front":
		return pipeline.CullModeFront, nil
	case "back":
		return pipeline.CullModeBack, nil
	}
	return 0, fmt.Errorf("unknown shader.cull %q", c.Shader.Cull)
}

// FrontFace resolves the configured front-face winding.
func (c Config) FrontFace() (pipeline.FrontFace, error) {
	switch strings.ToLower(c.Shader.FrontFace) {
	case "ccw", "":
		return pipeline.FrontFaceCCW, nil
	case "cw":
		return pipeline.FrontFaceCW, nil
	}
	return 0, fmt.Errorf("unknown shader.front_face %q", c.Shader.FrontFace)
}

// LogLevel resolves the configured log level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return level, nil
}

// ClearColor returns the clear color as a vector.
func (c Config) ClearColor() mgl32.Vec4 {
	return mgl32.Vec4(c.Render.ClearColor)
}

// CameraPosition returns the eye position as a vector.
func (c Config) CameraPosition() mgl32.Vec3 {
	return mgl32.Vec3(c.Camera.Position)
}

// CameraTarget returns the look-at point as a vector.
func (c Config) CameraTarget() mgl32.Vec3 {
	return mgl32.Vec3(c.Camera.Target)
}

// Light returns the configured light with its angles in radians.
func (c Config) Light() shader.Light {
	return shader.Light{
		Theta: mgl32.DegToRad(c.LightAngles.Theta),
		Phi:   mgl32.DegToRad(c.LightAngles.Phi),
	}
}
