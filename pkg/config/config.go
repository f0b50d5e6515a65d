package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	Spin   SpinConfig   `yaml:"spin"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
}

// WindowConfig contains window and surface configuration
type WindowConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Title         string  `yaml:"title"`
	VSync         bool    `yaml:"vsync"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
}

// CameraConfig contains the projection parameters of both cameras
type CameraConfig struct {
	Fov       float32 `yaml:"fov"`
	Near      float32 `yaml:"near"`
	Far       float32 `yaml:"far"`
	Distance  float32 `yaml:"distance"` // z position of both cameras
	OrthoNear float32 `yaml:"ortho_near"`
	OrthoFar  float32 `yaml:"ortho_far"`
}

// SpinConfig controls how pointer drags turn into model rotation
type SpinConfig struct {
	InitialVelocity float64 `yaml:"initial_velocity"`
	Decay           float64 `yaml:"decay"`
	IdleBias        float64 `yaml:"idle_bias"`
	DragScale       float64 `yaml:"drag_scale"`
}

// AssetsConfig names the files loaded at startup
type AssetsConfig struct {
	Dir     string `yaml:"dir"`
	Texture string `yaml:"texture"`
	Model   string `yaml:"model"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty means console only
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:         800,
			Height:        600,
			Title:         "Diamond",
			VSync:         true,
			MaxPixelRatio: 2,
		},
		Camera: CameraConfig{
			Fov:       50,
			Near:      0.1,
			Far:       1000,
			Distance:  5,
			OrthoNear: 1,
			OrthoFar:  1000,
		},
		Spin: SpinConfig{
			InitialVelocity: 0.005,
			Decay:           0.87,
			IdleBias:        0.005,
			DragScale:       0.001,
		},
		Assets: AssetsConfig{
			Dir:     "assets",
			Texture: "texture.jpg",
			Model:   "diamond.glb",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from a file. The returned config is
// never nil: on error it holds the defaults.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that would leave the viewer unusable
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Window.MaxPixelRatio < 1:
		return fmt.Errorf("max_pixel_ratio must be at least 1, got %v", c.Window.MaxPixelRatio)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("camera fov out of range: %v", c.Camera.Fov)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("invalid camera clip range [%v, %v]", c.Camera.Near, c.Camera.Far)
	case c.Camera.OrthoFar <= c.Camera.OrthoNear:
		return fmt.Errorf("invalid ortho clip range [%v, %v]", c.Camera.OrthoNear, c.Camera.OrthoFar)
	case c.Spin.Decay < 0 || c.Spin.Decay >= 1:
		return fmt.Errorf("spin decay must be in [0,1), got %v", c.Spin.Decay)
	case c.Assets.Texture == "" || c.Assets.Model == "":
		return fmt.Errorf("asset names must not be empty")
	}
	return nil
}
