package gpuspy

import (
	"time"

	"github.com/gogpu/gputypes"
)

// StateCollector snapshots API state at session boundaries and per command.
//
// Observation is paused while CaptureState runs, so host reads made to build
// the snapshot are not recorded. StartCapture and StopCapture run with
// observation on; implementations that read the host there should bracket
// the reads with ContextInformation.ToggleCapture(false) and (true).
// A capture dropped by UnSpy or by a restarting StartCapture still receives
// StopCapture.
type StateCollector interface {
	StartCapture(c *Capture) error
	StopCapture(c *Capture) error
	CaptureState(cmd *CommandCapture) error
}

// Recorder logs calls for replay. RecordCommand is called for every enabled
// call, whether or not a capture is open. Every StartCapture is matched by
// one StopCapture, including for captures dropped before StopCapture.
type Recorder interface {
	StartCapture() error
	StopCapture() error
	RecordCommand(call *CallInfo) error
	AppendRecordedInformation(c *Capture) error
}

// ObjectTagger assigns identity tags to opaque API objects.
type ObjectTagger interface {
	TagObjects(call *CallInfo) error
	TagObject(obj any) Tag
}

// Analyser derives post-capture data.
type Analyser interface {
	AppendAnalyses(c *Capture) error
}

// Environment provides static facts about the device behind the host.
type Environment interface {
	Limits() (gputypes.Limits, error)
	Features() (gputypes.Features, error)
	// Agent identifies the host agent (adapter, driver, runtime).
	Agent() string
}

// Clock returns timestamps for captures.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Nop collaborators used when none is configured.

type nopState struct{}

func (nopState) StartCapture(*Capture) error        { return nil }
func (nopState) StopCapture(*Capture) error         { return nil }
func (nopState) CaptureState(*CommandCapture) error { return nil }

type nopRecorder struct{}

func (nopRecorder) StartCapture() error                      { return nil }
func (nopRecorder) StopCapture() error                       { return nil }
func (nopRecorder) RecordCommand(*CallInfo) error            { return nil }
func (nopRecorder) AppendRecordedInformation(*Capture) error { return nil }

type nopTagger struct{}

func (nopTagger) TagObjects(*CallInfo) error { return nil }
func (nopTagger) TagObject(any) Tag          { return Tag{} }

type nopAnalyser struct{}

func (nopAnalyser) AppendAnalyses(*Capture) error { return nil }
