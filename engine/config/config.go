package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WindowConfig holds windowing settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
}

// RendererConfig holds renderer and surface settings.
type RendererConfig struct {
	// Backend selects the renderer backend: "wgpu" or "headless".
	Backend string `yaml:"backend"`

	// PresentMode selects the presentation mode: "vsync" or "uncapped".
	PresentMode string `yaml:"present_mode"`

	// MSAA selects the multisample count: 1 (off), 4, 8, or 16.
	MSAA int `yaml:"msaa"`

	// ForceSoftware forces a software (fallback) adapter when true.
	ForceSoftware bool `yaml:"force_software"`
}

// EngineConfig holds engine loop settings.
type EngineConfig struct {
	// TickRate is the game logic tick rate in ticks per second.
	TickRate float64 `yaml:"tick_rate"`

	// RenderFrameLimit caps the render loop in frames per second (0 = uncapped).
	RenderFrameLimit float64 `yaml:"render_frame_limit"`

	// Profiling enables periodic performance stats in the log.
	Profiling bool `yaml:"profiling"`
}

// CameraConfig holds default camera projection settings.
type CameraConfig struct {
	// FOV is the vertical field of view in degrees.
	FOV float32 `yaml:"fov"`

	// Near is the near clip plane distance.
	Near float32 `yaml:"near"`

	// Far is the far clip plane distance.
	Far float32 `yaml:"far"`
}

// Config is the root engine configuration, loadable from a YAML file.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Engine   EngineConfig   `yaml:"engine"`
	Camera   CameraConfig   `yaml:"camera"`
}

// Default returns a Config populated with sensible defaults: a 1280x720
// window, the wgpu backend with vsync and no MSAA, a 60 Hz tick rate, and a
// 60 degree perspective camera.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "ember",
			Width:     1280,
			Height:    720,
			MinWidth:  600,
			MinHeight: 200,
			MaxWidth:  1600,
			MaxHeight: 1200,
		},
		Renderer: RendererConfig{
			Backend:       "wgpu",
			PresentMode:   "vsync",
			MSAA:          1,
			ForceSoftware: false,
		},
		Engine: EngineConfig{
			TickRate:         60,
			RenderFrameLimit: 0,
			Profiling:        false,
		},
		Camera: CameraConfig{
			FOV:  60,
			Near: 0.1,
			Far:  100,
		},
	}
}

// Load reads a YAML configuration file, layering it over the defaults.
// Fields absent from the file keep their default values.
//
// Parameters:
//   - path: path to the YAML configuration file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
//
// Parameters:
//   - path: destination file path
//
// Returns:
//   - error: error if marshalling or writing fails
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the engine cannot honor.
//
// Returns:
//   - error: the first invalid field found, or nil
func (c Config) Validate() error {
	switch c.Renderer.Backend {
	case "wgpu", "headless":
	default:
		return fmt.Errorf("invalid renderer backend %q (want \"wgpu\" or \"headless\")", c.Renderer.Backend)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("invalid present mode %q (want \"vsync\" or \"uncapped\")", c.Renderer.PresentMode)
	}
	switch c.Renderer.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("invalid msaa sample count %d (want 1, 4, 8, or 16)", c.Renderer.MSAA)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	return nil
}
