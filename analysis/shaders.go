package analysis

import (
	"slices"

	"github.com/gogpu/gpuspy"
	"github.com/gogpu/naga"
)

// ShadersName is the registry name of Shaders.
const ShadersName = "shaders"

// ShaderReport describes one WGSL source seen in a capture.
type ShaderReport struct {
	CommandID int    `json:"commandId"`
	Command   string `json:"command"`
	Valid     bool   `json:"valid"`
	SPIRVSize int    `json:"spirvSize,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Shaders compiles the WGSL sources passed to shader-creation commands and
// reports whether each one compiles.
//
// A failed compilation is a diagnostic, not an analysis error.
type Shaders struct {
	opts     naga.CompileOptions
	commands []string
}

// NewShaders creates a Shaders analyzer. commands lists the shader-creation
// member names to inspect; it defaults to createShaderModule.
func NewShaders(opts naga.CompileOptions, commands ...string) *Shaders {
	if len(commands) == 0 {
		commands = []string{"createShaderModule"}
	}
	return &Shaders{opts: opts, commands: slices.Clone(commands)}
}

// Name implements Analyzer.
func (s *Shaders) Name() string { return ShadersName }

// Analyse implements Analyzer. Every string argument of a matching command
// is treated as a WGSL source.
func (s *Shaders) Analyse(c *gpuspy.Capture) (any, error) {
	var reports []ShaderReport
	for _, cmd := range c.Commands {
		if !slices.Contains(s.commands, cmd.Name) {
			continue
		}
		for _, arg := range cmd.Arguments {
			src, ok := arg.(string)
			if !ok {
				continue
			}
			reports = append(reports, s.compile(cmd, src))
		}
	}
	return reports, nil
}

func (s *Shaders) compile(cmd *gpuspy.CommandCapture, src string) ShaderReport {
	r := ShaderReport{CommandID: cmd.ID, Command: cmd.Name}
	spirv, err := naga.CompileWithOptions(src, s.opts)
	if err != nil {
		r.Error = err.Error()
		gpuspy.Logger().Debug("analysis: shader does not compile", "command", cmd.ID, "err", err)
		return r
	}
	r.Valid = true
	r.SPIRVSize = len(spirv)
	return r
}
