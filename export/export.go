// Package export serializes captures to JSON.
//
// Captured arguments and results are arbitrary Go values. Values JSON can
// represent (booleans, numbers, strings, slices and string-keyed maps of
// those) are written as is; opaque objects are written as their type name,
// their identity being carried by the command's tags.
package export

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"time"

	"github.com/gogpu/gpuspy"
	jsoniter "github.com/json-iterator/go"
)

// json sorts map keys so that exports are reproducible.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Capture is the JSON form of gpuspy.Capture.
type Capture struct {
	ID                      string         `json:"id"`
	Canvas                  Canvas         `json:"canvas"`
	Context                 Context        `json:"context"`
	Commands                []Command      `json:"commands"`
	InitState               map[string]any `json:"initState,omitempty"`
	EndState                map[string]any `json:"endState,omitempty"`
	StartTime               int64          `json:"startTime"`
	ListenCommandsStartTime int64          `json:"listenCommandsStartTime"`
	ListenCommandsEndTime   int64          `json:"listenCommandsEndTime"`
	EndTime                 int64          `json:"endTime"`
	Analyses                []Analysis     `json:"analyses,omitempty"`
	FrameMemory             map[string]any `json:"frameMemory,omitempty"`
	Memory                  map[string]any `json:"memory,omitempty"`
}

// Canvas is the JSON form of gpuspy.CanvasCapture.
type Canvas struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ClientWidth  int    `json:"clientWidth"`
	ClientHeight int    `json:"clientHeight"`
	Agent        string `json:"browserAgent,omitempty"`
}

// Context is the JSON form of gpuspy.ContextCapture.
type Context struct {
	Version            int             `json:"version"`
	Attributes         map[string]any  `json:"contextAttributes,omitempty"`
	Adapter            string          `json:"adapter,omitempty"`
	Capabilities       map[string]any  `json:"capabilities,omitempty"`
	Features           []string        `json:"features,omitempty"`
	Extensions         map[string]bool `json:"extensions,omitempty"`
	CompressedTextures []string        `json:"compressedTextures,omitempty"`
}

// Command is the JSON form of gpuspy.CommandCapture.
type Command struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Arguments      []any          `json:"commandArguments"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	Tags           []Tag          `json:"tags,omitempty"`
	State          map[string]any `json:"state,omitempty"`
	Marker         string         `json:"marker,omitempty"`
	StartTime      int64          `json:"startTime"`
	CommandEndTime int64          `json:"commandEndTime"`
	EndTime        int64          `json:"endTime"`
}

// Tag is the JSON form of gpuspy.Tag.
type Tag struct {
	TypeName    string `json:"typeName"`
	ID          int    `json:"id"`
	DisplayText string `json:"displayText"`
}

// Analysis is the JSON form of gpuspy.Analysis.
type Analysis struct {
	Name string `json:"analyserName"`
	Data any    `json:"data,omitempty"`
}

// FromCapture converts c to its JSON form.
// Timestamps are Unix milliseconds; zero times stay zero.
func FromCapture(c *gpuspy.Capture) *Capture {
	out := &Capture{
		ID: c.ID.String(),
		Canvas: Canvas{
			Width:        c.Canvas.Width,
			Height:       c.Canvas.Height,
			ClientWidth:  c.Canvas.ClientWidth,
			ClientHeight: c.Canvas.ClientHeight,
			Agent:        c.Canvas.Agent,
		},
		Context: Context{
			Version:    c.Context.Version,
			Attributes: sanitizeMap(c.Context.Attributes),
			Adapter:    c.Context.Adapter,
			Features:   c.Context.Features,
			Extensions: c.Context.Extensions,
		},
		Commands:                make([]Command, 0, len(c.Commands)),
		InitState:               sanitizeMap(c.InitState),
		EndState:                sanitizeMap(c.EndState),
		StartTime:               millis(c.StartTime),
		ListenCommandsStartTime: millis(c.ListenCommandsStartTime),
		ListenCommandsEndTime:   millis(c.ListenCommandsEndTime),
		EndTime:                 millis(c.EndTime),
		FrameMemory:             sanitizeMap(c.FrameMemory),
		Memory:                  sanitizeMap(c.Memory),
	}
	if c.Context.Capabilities != nil {
		out.Context.Capabilities = structFields(*c.Context.Capabilities)
	}
	for _, f := range c.Context.CompressedTextures {
		out.Context.CompressedTextures = append(out.Context.CompressedTextures, f.String())
	}
	for _, cmd := range c.Commands {
		out.Commands = append(out.Commands, fromCommand(cmd))
	}
	for _, a := range c.Analyses {
		out.Analyses = append(out.Analyses, Analysis{Name: a.Name, Data: a.Data})
	}
	return out
}

func fromCommand(cmd *gpuspy.CommandCapture) Command {
	out := Command{
		ID:             cmd.ID,
		Name:           cmd.Name,
		Arguments:      make([]any, len(cmd.Arguments)),
		Result:         sanitize(cmd.Result),
		State:          sanitizeMap(cmd.State),
		Marker:         cmd.Marker,
		StartTime:      millis(cmd.StartTime),
		CommandEndTime: millis(cmd.CommandEndTime),
		EndTime:        millis(cmd.EndTime),
	}
	for i, arg := range cmd.Arguments {
		out.Arguments[i] = sanitize(arg)
	}
	if cmd.Err != nil {
		out.Error = cmd.Err.Error()
	}
	for _, t := range cmd.Tags {
		out.Tags = append(out.Tags, Tag(t))
	}
	return out
}

// Marshal encodes c as JSON.
func Marshal(c *gpuspy.Capture) ([]byte, error) {
	data, err := json.Marshal(FromCapture(c))
	if err != nil {
		return nil, fmt.Errorf("export: marshal capture: %w", err)
	}
	return data, nil
}

// Encode writes c to w as indented JSON followed by a newline.
func Encode(w io.Writer, c *gpuspy.Capture) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromCapture(c)); err != nil {
		return fmt.Errorf("export: encode capture: %w", err)
	}
	return nil
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func sanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitize(v)
	}
	return out
}

// sanitize returns v if JSON can represent it and its type name otherwise.
// Non-finite floats become "NaN", "+Inf" or "-Inf".
func sanitize(v any) any {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "+Inf"
		case math.IsInf(f, -1):
			return "-Inf"
		}
		return v
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = sanitize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = sanitize(iter.Value().Interface())
		}
		return out
	}
	return rv.Type().String()
}

// structFields flattens the exported fields of a struct value.
func structFields(v any) map[string]any {
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.NumField())
	for i := range rv.NumField() {
		f := rv.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = sanitize(rv.Field(i).Interface())
	}
	return out
}
