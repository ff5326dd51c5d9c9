package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/gpuspy"
	"github.com/gogpu/gpuspy/analysis"
	"github.com/gogpu/gpuspy/export"
	"github.com/gogpu/gpuspy/probe"
	"github.com/gogpu/gpuspy/tagging"
	"github.com/gogpu/wgpu/core"
	"github.com/spf13/cobra"
)

func newCaptureCmd() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Replay the scripted calls of a config file and print the capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Capture.Output = output
			}

			c, err := runCapture(cfg)
			if err != nil {
				return err
			}

			if cfg.Capture.Output == "" || cfg.Capture.Output == "-" {
				return export.Encode(cmd.OutOrStdout(), c)
			}
			return writeCapture(cfg.Capture.Output, c)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML capture script")
	flags.StringVarP(&output, "output", "o", "", "write the capture to this file instead of stdout")
	return cmd
}

// runCapture builds the scripted host, replays cfg.Calls under a spy and
// returns the finished capture.
func runCapture(cfg *Config) (*gpuspy.Capture, error) {
	host := buildHost(cfg)

	env, source, err := resolveEnvironment(cfg.Capture.Probe)
	if err != nil {
		return nil, err
	}
	gpuspy.Logger().Debug("gpuspy: environment resolved", "source", source, "agent", env.Agent())

	var (
		pipelineErr error
		stopped     *gpuspy.Capture
		stopErr     error
	)
	spy, err := gpuspy.NewContextSpy(host,
		gpuspy.WithRecordAlways(cfg.Capture.RecordAlways),
		gpuspy.WithOperations(cfg.Capture.Operations...),
		gpuspy.WithObjectTagger(tagging.New()),
		gpuspy.WithEnvironment(env),
		gpuspy.WithAnalyserFunc(func(info *gpuspy.ContextInformation) gpuspy.Analyser {
			p, err := analysis.NewPipelineByName(info, cfg.Capture.Analyzers...)
			if err != nil {
				pipelineErr = err
				return nil
			}
			return p
		}),
		gpuspy.WithMaxCommandsHook(func(s *gpuspy.ContextSpy) {
			stopped, stopErr = s.StopCapture()
		}),
	)
	if err != nil {
		return nil, err
	}
	if pipelineErr != nil {
		return nil, pipelineErr
	}

	var opts []gpuspy.CaptureOption
	if cfg.Capture.MaxCommands > 0 {
		opts = append(opts, gpuspy.WithMaxCommands(cfg.Capture.MaxCommands))
	}
	if cfg.Capture.Quick {
		opts = append(opts, gpuspy.WithQuickCapture())
	}
	if cfg.Capture.Full {
		opts = append(opts, gpuspy.WithFullCapture())
	}
	if err := spy.StartCapture(opts...); err != nil {
		return nil, err
	}

	for _, call := range cfg.Calls {
		spy.SetMarker(call.Marker)
		// Scripted failures are part of the capture, not of the run.
		_, _ = host.Call(call.Name, call.Args...)
		if stopped != nil || stopErr != nil {
			return stopped, stopErr
		}
	}
	spy.ClearMarker()
	return spy.StopCapture()
}

// buildHost defines one member per distinct call name. Each invocation of a
// member answers with the next scripted call of that name, in file order.
func buildHost(cfg *Config) *gpuspy.Table {
	host := gpuspy.NewTable(cfg.Version, cfg.Canvas.Canvas())
	queues := make(map[string][]CallConfig)
	for _, call := range cfg.Calls {
		if _, ok := queues[call.Name]; !ok {
			host.Define(call.Name, scriptedMember(call.Name, queues))
		}
		queues[call.Name] = append(queues[call.Name], call)
	}
	return host
}

func scriptedMember(name string, queues map[string][]CallConfig) gpuspy.Func {
	return func(args ...any) (any, error) {
		q := queues[name]
		if len(q) == 0 {
			return nil, nil
		}
		call := q[0]
		queues[name] = q[1:]
		if call.Error != "" {
			return call.Result, errors.New(call.Error)
		}
		return call.Result, nil
	}
}

// resolveEnvironment picks the environment source named by probeName.
func resolveEnvironment(probeName string) (gpuspy.Environment, string, error) {
	var wgpu probe.Source
	if probeName == "wgpu" {
		wgpu = func() (*probe.Environment, error) {
			inst := core.NewInstance(nil)
			defer inst.Destroy()
			return probe.FromInstance(inst, nil)
		}
	}
	return probe.Default(wgpu).Resolve()
}

func writeCapture(path string, c *gpuspy.Capture) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.Encode(f, c)
}
