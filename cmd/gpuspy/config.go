package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gpuspy"
	"github.com/gogpu/gpuspy/analysis"
	"github.com/pelletier/go-toml/v2"
)

// Config describes a scripted capture: the simulated context, the session
// options and the calls to replay against it.
type Config struct {
	Version int           `toml:"version"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Capture CaptureConfig `toml:"capture"`
	Calls   []CallConfig  `toml:"calls"`
}

// CanvasConfig is the drawing surface of the simulated context.
// An unset client size follows the drawing buffer size.
type CanvasConfig struct {
	Width        int `toml:"width"`
	Height       int `toml:"height"`
	ClientWidth  int `toml:"client_width"`
	ClientHeight int `toml:"client_height"`
}

// CaptureConfig holds the session options.
type CaptureConfig struct {
	// Probe names the environment source: "wgpu" or "headless".
	Probe        string   `toml:"probe"`
	RecordAlways bool     `toml:"record_always"`
	// Operations restricts interception to these member names.
	Operations   []string `toml:"operations"`
	MaxCommands  int      `toml:"max_commands"`
	Quick        bool     `toml:"quick"`
	Full         bool     `toml:"full"`
	Analyzers    []string `toml:"analyzers"`
	Output       string   `toml:"output"`
}

// CallConfig is one scripted call. Members are defined from the distinct
// call names; a member returns Result, or fails with Error when it is set.
type CallConfig struct {
	Name   string `toml:"name"`
	Args   []any  `toml:"args"`
	Result any    `toml:"result"`
	Error  string `toml:"error"`
	Marker string `toml:"marker"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Version: 2,
		Canvas: CanvasConfig{
			Width:  800,
			Height: 600,
		},
		Capture: CaptureConfig{
			Probe:     "headless",
			Analyzers: []string{"commands", "shaders"},
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	overrideString(&cfg.Capture.Probe, "GPUSPY_PROBE")
	overrideString(&cfg.Capture.Output, "GPUSPY_OUTPUT")
	overrideInt(&cfg.Capture.MaxCommands, "GPUSPY_MAX_COMMANDS")
	overrideBool(&cfg.Capture.RecordAlways, "GPUSPY_RECORD_ALWAYS")
	if val := os.Getenv("GPUSPY_ANALYZERS"); val != "" {
		cfg.Capture.Analyzers = splitList(val)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Canvas returns the canvas of the simulated context.
func (c CanvasConfig) Canvas() gpuspy.Canvas {
	cv := gpuspy.Canvas{
		Width:        c.Width,
		Height:       c.Height,
		ClientWidth:  c.ClientWidth,
		ClientHeight: c.ClientHeight,
	}
	if cv.ClientWidth == 0 {
		cv.ClientWidth = cv.Width
	}
	if cv.ClientHeight == 0 {
		cv.ClientHeight = cv.Height
	}
	return cv
}

func (c *Config) validate() error {
	switch c.Capture.Probe {
	case "wgpu", "headless":
	default:
		return fmt.Errorf("config: unknown probe %q (want wgpu or headless)", c.Capture.Probe)
	}
	if c.Capture.MaxCommands < 0 {
		return fmt.Errorf("config: max_commands must not be negative, got %d", c.Capture.MaxCommands)
	}
	for _, name := range c.Capture.Analyzers {
		if !analysis.IsRegistered(name) {
			return fmt.Errorf("config: unknown analyzer %q (want one of %s)",
				name, strings.Join(analysis.Names(), ", "))
		}
	}
	for i, call := range c.Calls {
		if call.Name == "" {
			return fmt.Errorf("config: call %d has no name", i)
		}
	}
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func overrideString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func overrideBool(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "1", "true", "yes", "y", "on":
			*dest = true
		case "0", "false", "no", "n", "off":
			*dest = false
		}
	}
}

func overrideInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dest = parsed
		}
	}
}
