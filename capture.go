package gpuspy

import (
	"time"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
)

// CallInfo describes one intercepted invocation.
// Interceptors fill it after the original member returned.
type CallInfo struct {
	Name      string
	Arguments []any
	Result    any
	// Err is the error returned by the original member, if any.
	Err error
	// Tags holds identity tags of opaque handles referenced by the call,
	// filled by the object tagger.
	Tags      []Tag
	StartTime time.Time
	EndTime   time.Time
}

// Tag identifies an opaque API object (buffer, texture, program...).
type Tag struct {
	TypeName    string
	ID          int
	DisplayText string
}

// CommandCapture is the record of one intercepted call within a Capture.
type CommandCapture struct {
	ID        int
	Name      string
	Arguments []any
	Result    any
	Err       error
	Tags      []Tag
	// State is the snapshot attached by the state collector.
	State  map[string]any
	Marker string

	StartTime      time.Time
	CommandEndTime time.Time
	// EndTime is stamped once the command has been appended to its capture.
	EndTime time.Time
}

// CanvasCapture is the drawing surface snapshot of a capture.
type CanvasCapture struct {
	Width        int
	Height       int
	ClientWidth  int
	ClientHeight int
	Agent        string
}

// ContextCapture holds the static context metadata of a capture.
// It is collected once per ContextSpy and copied into every capture.
type ContextCapture struct {
	Version            int
	Attributes         map[string]any
	Adapter            string
	Capabilities       *gputypes.Limits
	Features           []string
	Extensions         map[string]bool
	CompressedTextures []gputypes.TextureFormat
}

// Analysis is one block of derived data appended after a session.
type Analysis struct {
	Name string
	Data any
}

// Capture is the structured record of one recording session.
type Capture struct {
	ID      uuid.UUID
	Canvas  CanvasCapture
	Context ContextCapture

	// Commands is append-only; order is call order.
	Commands []*CommandCapture

	InitState map[string]any
	EndState  map[string]any

	StartTime               time.Time
	ListenCommandsStartTime time.Time
	ListenCommandsEndTime   time.Time
	EndTime                 time.Time

	Analyses    []Analysis
	FrameMemory map[string]any
	Memory      map[string]any

	// Session options, visible to collaborators.
	MaxCommands int
	Quick       bool
	Full        bool
}

// CaptureOption configures one capture session.
type CaptureOption func(*Capture)

// WithMaxCommands sets the command count at which the max-commands hook fires.
// Zero disables the hook.
func WithMaxCommands(n int) CaptureOption {
	return func(c *Capture) {
		c.MaxCommands = n
	}
}

// WithQuickCapture asks the state collector to skip expensive snapshots.
func WithQuickCapture() CaptureOption {
	return func(c *Capture) {
		c.Quick = true
	}
}

// WithFullCapture asks the state collector for exhaustive snapshots.
func WithFullCapture() CaptureOption {
	return func(c *Capture) {
		c.Full = true
	}
}

// Duration returns the time between start and end of the session.
func (c *Capture) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}

// ListenDuration returns the time commands were being recorded.
func (c *Capture) ListenDuration() time.Duration {
	return c.ListenCommandsEndTime.Sub(c.ListenCommandsStartTime)
}
