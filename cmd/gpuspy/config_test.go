package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gpuspy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2, cfg.Version)
	assert.Equal(t, "headless", cfg.Capture.Probe)
	assert.Equal(t, []string{"commands", "shaders"}, cfg.Capture.Analyzers)
	assert.Equal(t, 800, cfg.Canvas.Width)
	assert.Empty(t, cfg.Calls)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
version = 1

[canvas]
width = 320
height = 200

[capture]
max_commands = 2
analyzers = ["commands"]

[[calls]]
name = "clearColor"
args = [0.0, 0.5, 1.0, 1]
marker = "clear"

[[calls]]
name = "drawArrays"
args = [4, 0, 3]
error = "INVALID_OPERATION"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 320, cfg.Canvas.Width)
	assert.Zero(t, cfg.Canvas.ClientWidth, "unset client size stays unset")
	assert.Equal(t, gpuspy.Canvas{Width: 320, Height: 200, ClientWidth: 320, ClientHeight: 200}, cfg.Canvas.Canvas())
	assert.Equal(t, "headless", cfg.Capture.Probe, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Capture.MaxCommands)
	assert.Equal(t, []string{"commands"}, cfg.Capture.Analyzers)

	require.Len(t, cfg.Calls, 2)
	assert.Equal(t, []any{0.0, 0.5, 1.0, int64(1)}, cfg.Calls[0].Args)
	assert.Equal(t, "clear", cfg.Calls[0].Marker)
	assert.Equal(t, "INVALID_OPERATION", cfg.Calls[1].Error)
}

func TestCanvasClientSize(t *testing.T) {
	tests := []struct {
		name string
		in   CanvasConfig
		want gpuspy.Canvas
	}{
		{"derived", CanvasConfig{Width: 640, Height: 480}, gpuspy.Canvas{Width: 640, Height: 480, ClientWidth: 640, ClientHeight: 480}},
		{"explicit", CanvasConfig{Width: 640, Height: 480, ClientWidth: 320, ClientHeight: 240}, gpuspy.Canvas{Width: 640, Height: 480, ClientWidth: 320, ClientHeight: 240}},
		{"defaults", DefaultConfig().Canvas, gpuspy.Canvas{Width: 800, Height: 600, ClientWidth: 800, ClientHeight: 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Canvas())
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GPUSPY_PROBE", "wgpu")
	t.Setenv("GPUSPY_MAX_COMMANDS", "10")
	t.Setenv("GPUSPY_RECORD_ALWAYS", "yes")
	t.Setenv("GPUSPY_ANALYZERS", "shaders, commands,")
	t.Setenv("GPUSPY_OUTPUT", "out.json")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "wgpu", cfg.Capture.Probe)
	assert.Equal(t, 10, cfg.Capture.MaxCommands)
	assert.True(t, cfg.Capture.RecordAlways)
	assert.Equal(t, []string{"shaders", "commands"}, cfg.Capture.Analyzers)
	assert.Equal(t, "out.json", cfg.Capture.Output)
}

func TestLoadConfigInvalidEnvIgnored(t *testing.T) {
	t.Setenv("GPUSPY_MAX_COMMANDS", "many")
	t.Setenv("GPUSPY_RECORD_ALWAYS", "maybe")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Zero(t, cfg.Capture.MaxCommands)
	assert.False(t, cfg.Capture.RecordAlways)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "colour = 1\n", "decode config"},
		{"unknown probe", "[capture]\nprobe = \"vulkan\"\n", "unknown probe"},
		{"negative max", "[capture]\nmax_commands = -1\n", "max_commands"},
		{"unnamed call", "[[calls]]\nargs = [1]\n", "has no name"},
		{"unknown analyzer", "[capture]\nanalyzers = [\"overdraw\"]\n", "unknown analyzer \"overdraw\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
