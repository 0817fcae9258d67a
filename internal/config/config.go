package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"ShapeBoard/internal/state"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

type SizeRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Config is loaded from config.yaml. Missing fields keep their defaults.
type Config struct {
	Window    Window    `yaml:"window"`
	Palette   []string  `yaml:"palette"`
	ShapeSize SizeRange `yaml:"shape_size"`
	Port      int       `yaml:"port"`
	Advertise bool      `yaml:"advertise"`
	LogFile   string    `yaml:"log_file"`
	Verbose   bool      `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Window:    Window{Width: 1024, Height: 768},
		Palette:   append([]string(nil), state.DefaultPalette...),
		ShapeSize: SizeRange{Min: state.DefaultMinSize, Max: state.DefaultMaxSize},
		Port:      8888,
		Advertise: true,
	}
}

// DefaultPath is $UserConfigDir/shapeboard/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "shapeboard", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %.0fx%.0f", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.ShapeSize.Min <= 0 || c.ShapeSize.Min > c.ShapeSize.Max {
		return fmt.Errorf("%w: shape_size min(%d) max(%d)", ErrInvalid, c.ShapeSize.Min, c.ShapeSize.Max)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalid)
	}
	for _, hex := range c.Palette {
		if !validHex(hex) {
			return fmt.Errorf("%w: palette color %q is not #RRGGBB", ErrInvalid, hex)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	return nil
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// BoardOptions maps the config onto a board.
func (c *Config) BoardOptions() state.Options {
	return state.Options{
		Palette: c.Palette,
		MinSize: c.ShapeSize.Min,
		MaxSize: c.ShapeSize.Max,
	}
}
