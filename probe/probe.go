// Package probe provides gpuspy.Environment implementations that describe
// the GPU a captured context runs on.
//
// An Environment is resolved once, up front, and then answers the static
// metadata queries of a ContextSpy from memory:
//
//	inst := core.NewInstance(nil)
//	defer inst.Destroy()
//	adapter, err := inst.RequestAdapter(nil)
//	if err != nil {
//	    return err
//	}
//	env, err := probe.FromAdapter(adapter)
//	if err != nil {
//	    return err
//	}
//	spy, err := gpuspy.NewContextSpy(host, gpuspy.WithEnvironment(env))
package probe

import (
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// Environment is a resolved description of an adapter.
// It implements gpuspy.Environment.
type Environment struct {
	info     gputypes.AdapterInfo
	limits   gputypes.Limits
	features gputypes.Features
	format   gputypes.TextureFormat
}

// Static returns an Environment with fixed answers.
func Static(info gputypes.AdapterInfo, limits gputypes.Limits, features gputypes.Features) *Environment {
	return &Environment{info: info, limits: limits, features: features}
}

// Headless returns the environment used when no adapter is available:
// default limits, no optional features.
func Headless() *Environment {
	return Static(gputypes.AdapterInfo{Name: "headless", DeviceType: gputypes.DeviceTypeOther}, gputypes.DefaultLimits(), 0)
}

// FromAdapter reads info, limits and features of a wgpu core adapter.
func FromAdapter(id core.AdapterID) (*Environment, error) {
	info, err := core.GetAdapterInfo(id)
	if err != nil {
		return nil, fmt.Errorf("probe: adapter %v: %w", id, err)
	}
	limits, err := core.GetAdapterLimits(id)
	if err != nil {
		return nil, fmt.Errorf("probe: adapter %v: %w", id, err)
	}
	features, err := core.GetAdapterFeatures(id)
	if err != nil {
		return nil, fmt.Errorf("probe: adapter %v: %w", id, err)
	}
	return &Environment{info: info, limits: limits, features: features}, nil
}

// FromDevice describes a device created from adapter. Limits and features
// are the ones enabled on the device rather than the adapter's maximums.
func FromDevice(adapter core.AdapterID, device core.DeviceID) (*Environment, error) {
	info, err := core.GetAdapterInfo(adapter)
	if err != nil {
		return nil, fmt.Errorf("probe: adapter %v: %w", adapter, err)
	}
	limits, err := core.GetDeviceLimits(device)
	if err != nil {
		return nil, fmt.Errorf("probe: device %v: %w", device, err)
	}
	features, err := core.GetDeviceFeatures(device)
	if err != nil {
		return nil, fmt.Errorf("probe: device %v: %w", device, err)
	}
	return &Environment{info: info, limits: limits, features: features}, nil
}

// FromInstance requests an adapter from inst and describes it.
// The caller keeps ownership of inst.
func FromInstance(inst *core.Instance, opts *gputypes.RequestAdapterOptions) (*Environment, error) {
	id, err := inst.RequestAdapter(opts)
	if err != nil {
		return nil, fmt.Errorf("probe: request adapter: %w", err)
	}
	return FromAdapter(id)
}

// FromProvider describes the adapter behind a gpucontext.DeviceProvider.
//
// When the provider exposes a wgpu core adapter, its limits and features are
// read from it. Otherwise only the provider's AdapterInfo is known and the
// limits default to gputypes.DefaultLimits.
func FromProvider(p gpucontext.DeviceProvider) (*Environment, error) {
	if id, ok := p.Adapter().(core.AdapterID); ok && !id.IsZero() {
		env, err := FromAdapter(id)
		if err != nil {
			return nil, err
		}
		env.format = p.SurfaceFormat()
		return env, nil
	}

	pi := p.AdapterInfo()
	return &Environment{
		info: gputypes.AdapterInfo{
			Name:       pi.Name,
			DeviceType: deviceType(pi.Type),
		},
		limits: gputypes.DefaultLimits(),
		format: p.SurfaceFormat(),
	}, nil
}

// deviceType maps the gpucontext adapter classification onto gputypes.
func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// Limits implements gpuspy.Environment.
func (e *Environment) Limits() (gputypes.Limits, error) { return e.limits, nil }

// Features implements gpuspy.Environment.
func (e *Environment) Features() (gputypes.Features, error) { return e.features, nil }

// Agent implements gpuspy.Environment.
func (e *Environment) Agent() string { return Agent(e.info) }

// AdapterInfo returns the full adapter description.
func (e *Environment) AdapterInfo() gputypes.AdapterInfo { return e.info }

// SurfaceFormat returns the preferred surface format, or
// TextureFormatUndefined when the environment has no surface.
func (e *Environment) SurfaceFormat() gputypes.TextureFormat { return e.format }

// Agent formats an adapter description as a single line, for example
// "Mock Adapter (MockVendor; Vulkan; DiscreteGPU; driver 1.0.0)".
func Agent(info gputypes.AdapterInfo) string {
	var details []string
	if info.Vendor != "" {
		details = append(details, info.Vendor)
	}
	if info.Backend != gputypes.BackendEmpty {
		details = append(details, info.Backend.String())
	}
	details = append(details, info.DeviceType.String())
	if info.Driver != "" {
		details = append(details, "driver "+info.Driver)
	}
	name := info.Name
	if name == "" {
		name = "unknown adapter"
	}
	return name + " (" + strings.Join(details, "; ") + ")"
}
