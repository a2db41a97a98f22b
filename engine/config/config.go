// Package config loads the run configuration of an application from TOML or YAML files.
//
// Every field has a default, so a file only needs the keys it changes:
//
//	[window]
//	title = "shapes"
//	width = 800
//	height = 600
//
//	[graphics]
//	backend = "software"
//	present_mode = "immediate"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Format is the encoding of a configuration file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf picks the format from a file extension: .yaml and .yml are YAML, everything else TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Window configures the application window.
type Window struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// Graphics configures the graphics context and surface.
type Graphics struct {
	Backend              string `toml:"backend" yaml:"backend"`
	PresentMode          string `toml:"present_mode" yaml:"present_mode"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter" yaml:"force_fallback_adapter"`
	RasterWorkers        int    `toml:"raster_workers" yaml:"raster_workers"`
	ShaderValidation     bool   `toml:"shader_validation" yaml:"shader_validation"`
}

// Profiler configures frame statistics logging.
type Profiler struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	Interval string `toml:"interval" yaml:"interval"`
}

// Config is the run configuration of an application.
type Config struct {
	Window   Window   `toml:"window" yaml:"window"`
	Graphics Graphics `toml:"graphics" yaml:"graphics"`
	Profiler Profiler `toml:"profiler" yaml:"profiler"`
	LogLevel string   `toml:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "kopki",
			Width:  1280,
			Height: 720,
		},
		Graphics: Graphics{
			Backend:     backend.BackendTypeWGPU.String(),
			PresentMode: backend.PresentModeFifo.String(),
		},
		Profiler: Profiler{
			Interval: "1s",
		},
		LogLevel: "info",
	}
}

// Load reads and validates a configuration file, picking the format from its extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the defaults overridden by the file
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration data. Unknown keys are rejected.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding of data
//
// Returns:
//   - Config: the defaults overridden by data
//   - error: error if data cannot be decoded or does not validate
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves the defaults in place.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to decode yaml: %v: %w", err, ErrInvalidConfig)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode toml: %v: %w", err, ErrInvalidConfig)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the configuration in the given format.
//
// Parameters:
//   - format: the encoding to produce
//
// Returns:
//   - []byte: the encoded configuration
//   - error: error if encoding fails
func (c Config) Encode(format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(c)
	}
	return toml.Marshal(c)
}

// Validate checks that every field holds a usable value.
//
// Returns:
//   - error: error wrapping ErrInvalidConfig naming every invalid field
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, err := c.BackendType(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PresentMode(); err != nil {
		errs = append(errs, err)
	}
	if c.Graphics.RasterWorkers < 0 {
		errs = append(errs, fmt.Errorf("raster_workers %d must not be negative", c.Graphics.RasterWorkers))
	}
	if _, err := c.ProfilerInterval(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// BackendType returns the configured backend.
func (c Config) BackendType() (backend.BackendType, error) {
	return backend.ParseBackendType(strings.ToLower(c.Graphics.Backend))
}

// PresentMode returns the configured present mode.
func (c Config) PresentMode() (backend.PresentMode, error) {
	return backend.ParsePresentMode(strings.ToLower(c.Graphics.PresentMode))
}

// ProfilerInterval returns how often the profiler logs, parsed from a Go duration string.
func (c Config) ProfilerInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Profiler.Interval)
	if err != nil {
		return 0, fmt.Errorf("profiler interval %q: %w", c.Profiler.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("profiler interval %q must be positive", c.Profiler.Interval)
	}
	return d, nil
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
