package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gpuspy"
	"github.com/gogpu/gpuspy/probe"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

// probeReport is the JSON form of the probe command output.
type probeReport struct {
	Agent              string            `json:"agent"`
	Adapter            adapterReport     `json:"adapter"`
	Features           []string          `json:"features"`
	CompressedTextures []string          `json:"compressedTextures"`
	Limits             map[string]uint64 `json:"limits"`
}

type adapterReport struct {
	Name       string `json:"name"`
	Vendor     string `json:"vendor"`
	Backend    string `json:"backend"`
	DeviceType string `json:"deviceType"`
	Driver     string `json:"driver"`
	Mock       bool   `json:"mock"`
}

func newProbeCmd() *cobra.Command {
	var (
		asJSON   bool
		mock     bool
		fallback bool
		power    string
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Describe the adapter a capture would report",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := adapterOptions(power, fallback)
			if err != nil {
				return err
			}

			var inst *core.Instance
			if mock {
				inst = core.NewInstanceWithMock(nil)
			} else {
				inst = core.NewInstance(nil)
			}
			defer inst.Destroy()

			env, err := probe.FromInstance(inst, opts)
			if err != nil {
				return err
			}
			report := newProbeReport(env, inst.IsMock())
			if asJSON {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeProbeReport(cmd.OutOrStdout(), report)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flags.BoolVar(&mock, "mock", false, "probe the mock adapter instead of real hardware")
	flags.BoolVar(&fallback, "fallback", false, "force the software fallback adapter")
	flags.StringVar(&power, "power", "", "power preference: low or high")
	return cmd
}

func adapterOptions(power string, fallback bool) (*gputypes.RequestAdapterOptions, error) {
	if power == "" && !fallback {
		return nil, nil
	}
	opts := &gputypes.RequestAdapterOptions{ForceFallbackAdapter: fallback}
	switch strings.ToLower(power) {
	case "":
	case "low":
		opts.PowerPreference = gputypes.PowerPreferenceLowPower
	case "high":
		opts.PowerPreference = gputypes.PowerPreferenceHighPerformance
	default:
		return nil, fmt.Errorf("invalid --power value %q (want low or high)", power)
	}
	return opts, nil
}

func newProbeReport(env *probe.Environment, mock bool) probeReport {
	info := env.AdapterInfo()
	features, _ := env.Features()
	limits, _ := env.Limits()

	r := probeReport{
		Agent: env.Agent(),
		Adapter: adapterReport{
			Name:       info.Name,
			Vendor:     info.Vendor,
			Backend:    info.Backend.String(),
			DeviceType: info.DeviceType.String(),
			Driver:     info.Driver,
			Mock:       mock,
		},
		Features: gpuspy.FeatureNames(features),
		Limits: map[string]uint64{
			"maxTextureDimension2D":       uint64(limits.MaxTextureDimension2D),
			"maxTextureArrayLayers":       uint64(limits.MaxTextureArrayLayers),
			"maxBindGroups":               uint64(limits.MaxBindGroups),
			"maxVertexBuffers":            uint64(limits.MaxVertexBuffers),
			"maxColorAttachments":         uint64(limits.MaxColorAttachments),
			"maxUniformBufferBindingSize": limits.MaxUniformBufferBindingSize,
			"maxStorageBufferBindingSize": limits.MaxStorageBufferBindingSize,
			"maxBufferSize":               limits.MaxBufferSize,
			"maxComputeWorkgroupSizeX":    uint64(limits.MaxComputeWorkgroupSizeX),
		},
	}
	for _, f := range gpuspy.CompressedTextureFormats(features) {
		r.CompressedTextures = append(r.CompressedTextures, f.String())
	}
	return r
}

func writeProbeReport(w io.Writer, r probeReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "agent:    %s\n", r.Agent)
	fmt.Fprintf(&b, "backend:  %s\n", r.Adapter.Backend)
	fmt.Fprintf(&b, "mock:     %t\n", r.Adapter.Mock)
	fmt.Fprintf(&b, "features: %s\n", listOrNone(r.Features))
	fmt.Fprintf(&b, "formats:  %d compressed\n", len(r.CompressedTextures))
	fmt.Fprintf(&b, "limits:   maxTextureDimension2D=%d maxBindGroups=%d\n",
		r.Limits["maxTextureDimension2D"], r.Limits["maxBindGroups"])
	_, err := io.WriteString(w, b.String())
	return err
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
