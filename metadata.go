package gpuspy

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/gputypes"
)

// staticMetadata is collected once per ContextSpy and copied into every capture.
type staticMetadata struct {
	canvas  CanvasCapture
	context ContextCapture
}

// featureOrder lists every known feature, in bit order.
var featureOrder = []gputypes.Feature{
	gputypes.FeatureDepthClipControl,
	gputypes.FeatureDepth32FloatStencil8,
	gputypes.FeatureTextureCompressionBC,
	gputypes.FeatureTextureCompressionETC2,
	gputypes.FeatureTextureCompressionASTC,
	gputypes.FeatureIndirectFirstInstance,
	gputypes.FeatureShaderF16,
	gputypes.FeatureRG11B10UfloatRenderable,
	gputypes.FeatureBGRA8UnormStorage,
	gputypes.FeatureFloat32Filterable,
	gputypes.FeatureTimestampQuery,
	gputypes.FeaturePipelineStatisticsQuery,
	gputypes.FeatureMultiDrawIndirect,
	gputypes.FeatureMultiDrawIndirectCount,
	gputypes.FeaturePushConstants,
	gputypes.FeatureTextureAdapterSpecificFormatFeatures,
	gputypes.FeatureShaderFloat64,
	gputypes.FeatureVertexAttribute64bit,
	gputypes.FeatureSubgroupOperations,
	gputypes.FeatureSubgroupBarrier,
}

// FeatureNames returns the names of the features contained in f.
func FeatureNames(f gputypes.Features) []string {
	var names []string
	for _, feature := range featureOrder {
		if f.Contains(feature) {
			names = append(names, feature.String())
		}
	}
	return names
}

// CompressedTextureFormats returns the block-compressed texture formats
// enabled by the compression features in f.
func CompressedTextureFormats(f gputypes.Features) []gputypes.TextureFormat {
	var formats []gputypes.TextureFormat
	if f.Contains(gputypes.FeatureTextureCompressionBC) {
		formats = appendRange(formats, gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb)
	}
	if f.Contains(gputypes.FeatureTextureCompressionETC2) {
		formats = appendRange(formats, gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatEACRG11Snorm)
	}
	if f.Contains(gputypes.FeatureTextureCompressionASTC) {
		formats = appendRange(formats, gputypes.TextureFormatASTC4x4Unorm, gputypes.TextureFormatASTC12x12UnormSrgb)
	}
	return formats
}

// appendRange appends the contiguous formats first..last.
func appendRange(dst []gputypes.TextureFormat, first, last gputypes.TextureFormat) []gputypes.TextureFormat {
	for f := first; f <= last; f++ {
		dst = append(dst, f)
	}
	return dst
}

// collectMetadata discovers extensions into the shared handle and gathers
// the static facts attached to every capture.
func collectMetadata(host Host, info *ContextInformation, env Environment) (staticMetadata, error) {
	exts := host.Extensions()
	info.extensions = make(map[string]Surface, len(exts))
	for name, ext := range exts {
		if ext == nil {
			continue
		}
		info.extensions[name] = ext
	}
	info.extNames = slices.Sorted(maps.Keys(info.extensions))

	canvas := host.Canvas()
	md := staticMetadata{
		canvas: CanvasCapture{
			Width:        canvas.Width,
			Height:       canvas.Height,
			ClientWidth:  canvas.ClientWidth,
			ClientHeight: canvas.ClientHeight,
		},
		context: ContextCapture{
			Version:    host.Version(),
			Attributes: host.ContextAttributes(),
			Extensions: make(map[string]bool, len(exts)),
		},
	}
	for name, ext := range exts {
		md.context.Extensions[name] = ext != nil
	}

	if env == nil {
		return md, nil
	}

	limits, err := env.Limits()
	if err != nil {
		return staticMetadata{}, fmt.Errorf("gpuspy: collect limits: %w", err)
	}
	features, err := env.Features()
	if err != nil {
		return staticMetadata{}, fmt.Errorf("gpuspy: collect features: %w", err)
	}
	md.context.Capabilities = &limits
	md.context.Features = FeatureNames(features)
	md.context.CompressedTextures = CompressedTextureFormats(features)
	md.context.Adapter = env.Agent()
	md.canvas.Agent = env.Agent()
	return md, nil
}

// newCapture returns a capture seeded with a copy of the static metadata.
func (md *staticMetadata) newCapture() *Capture {
	ctx := md.context
	ctx.Attributes = maps.Clone(md.context.Attributes)
	ctx.Extensions = maps.Clone(md.context.Extensions)
	ctx.Features = slices.Clone(md.context.Features)
	ctx.CompressedTextures = slices.Clone(md.context.CompressedTextures)
	if md.context.Capabilities != nil {
		limits := *md.context.Capabilities
		ctx.Capabilities = &limits
	}
	return &Capture{
		Canvas:   md.canvas,
		Context:  ctx,
		Commands: make([]*CommandCapture, 0, 256),
	}
}
