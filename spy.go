package gpuspy

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ContextSpy observes a Host and assembles captures of its calls.
//
// A ContextSpy starts Unwrapped. Spy installs interceptors on every eligible
// member of the host and its extensions; StartCapture opens a capture that
// receives one CommandCapture per intercepted call until StopCapture.
//
// Example:
//
//	spy, err := gpuspy.NewContextSpy(host)
//	if err != nil {
//	    return err
//	}
//	if err := spy.StartCapture(); err != nil {
//	    return err
//	}
//	drawFrame(host)
//	capture, err := spy.StopCapture()
//
// ContextSpy is not safe for concurrent use. Every intercepted call must be
// made from the goroutine that drives the spy.
type ContextSpy struct {
	opts options
	info *ContextInformation
	lc   *lifecycle

	interceptors map[string]Interceptor
	metadata     staticMetadata
	nextID       int
	marker       string
}

// NewContextSpy creates a spy for host and collects its static metadata.
// With WithRecordAlways(true) the interceptors are installed immediately.
func NewContextSpy(host Host, opts ...Option) (*ContextSpy, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &ContextSpy{
		opts:         o,
		lc:           newLifecycle(),
		interceptors: make(map[string]Interceptor),
	}
	s.info = &ContextInformation{
		host:    host,
		version: host.Version(),
		lc:      s.lc,
		tagger:  o.tagger,
		clock:   o.clock,
	}
	if o.newAnalyser != nil {
		if a := o.newAnalyser(s.info); a != nil {
			s.opts.analyser = a
		}
	}

	md, err := collectMetadata(host, s.info, o.env)
	if err != nil {
		return nil, err
	}
	s.metadata = md

	if o.recordAlways {
		s.Spy()
	}
	return s, nil
}

// Info returns the capability handle shared with collaborators.
func (s *ContextSpy) Info() *ContextInformation {
	return s.info
}

// State returns the current lifecycle state.
func (s *ContextSpy) State() State {
	return s.lc.state
}

// IsCapturing reports whether intercepted calls are currently appended to a
// capture: observation is enabled and a capture is open.
func (s *ContextSpy) IsCapturing() bool {
	return s.lc.observing()
}

// NextCommandCaptureID returns the current session command id and advances it.
func (s *ContextSpy) NextCommandCaptureID() int {
	id := s.nextID
	s.nextID++
	return id
}

// SetMarker labels subsequent commands with marker.
func (s *ContextSpy) SetMarker(marker string) {
	s.marker = marker
}

// ClearMarker stops labelling commands.
func (s *ContextSpy) ClearMarker() {
	s.marker = ""
}

// Spy installs interceptors on every eligible member not yet wrapped.
// Members already wrapped are left untouched. Installation failures are
// logged and skipped.
func (s *ContextSpy) Spy() {
	s.spyAll()
	s.lc.wrap()
	s.logger().Debug("gpuspy: spy", "interceptors", len(s.interceptors))
}

// UnSpy restores every wrapped member and drops any open capture.
// The state collector and recorder of a dropped capture are stopped.
// It is a no-op when the spy was created with WithRecordAlways(true).
func (s *ContextSpy) UnSpy() {
	if s.opts.recordAlways {
		return
	}
	if s.lc.recording() {
		s.discard("unspy")
	}
	s.unSpyAll()
	s.lc.unwrap()
	s.logger().Debug("gpuspy: unspy")
}

// StartCapture opens a new capture.
//
// Unless the spy records always, interceptors are installed first. Calling
// StartCapture while a capture is open cancels that capture and starts a new
// one; the cancelled capture is discarded. Errors from the state collector or
// recorder are returned and leave no capture open.
func (s *ContextSpy) StartCapture(opts ...CaptureOption) error {
	start := s.opts.clock.Now()
	if s.lc.recording() {
		s.discard("restart")
	}
	if !s.opts.recordAlways {
		s.Spy()
	}

	c := s.metadata.newCapture()
	c.ID = uuid.New()
	c.StartTime = start
	for _, opt := range opts {
		opt(c)
	}
	s.nextID = 0

	if err := s.opts.state.StartCapture(c); err != nil {
		return fmt.Errorf("gpuspy: start state capture: %w", err)
	}
	if err := s.opts.recorder.StartCapture(); err != nil {
		return fmt.Errorf("gpuspy: start recorder: %w", err)
	}

	c.ListenCommandsStartTime = s.opts.clock.Now()
	s.lc.open(c)
	s.logger().Debug("gpuspy: capture started", "id", c.ID)
	return nil
}

// StopCapture closes the open capture and returns it with the recorder's and
// analyser's data appended. Ownership of the capture passes to the caller.
// It returns (nil, nil) when no capture is open.
func (s *ContextSpy) StopCapture() (*Capture, error) {
	if !s.lc.recording() {
		return nil, nil
	}
	now := s.opts.clock.Now()
	c := s.lc.close()
	c.ListenCommandsEndTime = now
	c.EndTime = now

	if !s.opts.recordAlways {
		s.UnSpy()
	}

	if err := s.opts.state.StopCapture(c); err != nil {
		return nil, fmt.Errorf("gpuspy: stop state capture: %w", err)
	}
	if err := s.opts.recorder.StopCapture(); err != nil {
		return nil, fmt.Errorf("gpuspy: stop recorder: %w", err)
	}
	if err := s.opts.recorder.AppendRecordedInformation(c); err != nil {
		return nil, fmt.Errorf("gpuspy: append recorded information: %w", err)
	}
	if err := s.opts.analyser.AppendAnalyses(c); err != nil {
		return nil, fmt.Errorf("gpuspy: append analyses: %w", err)
	}

	s.logger().Debug("gpuspy: capture stopped", "id", c.ID, "commands", len(c.Commands))
	return c, nil
}

// discard closes the open capture without returning it and stops the
// collaborators' session. Their errors are logged: nobody owns the capture.
func (s *ContextSpy) discard(reason string) {
	c := s.lc.close()
	s.logger().Warn("gpuspy: discarding open capture",
		"reason", reason, "id", c.ID, "commands", len(c.Commands))
	if err := s.opts.state.StopCapture(c); err != nil {
		s.logger().Error("gpuspy: stop state capture", "id", c.ID, "err", err)
	}
	if err := s.opts.recorder.StopCapture(); err != nil {
		s.logger().Error("gpuspy: stop recorder", "id", c.ID, "err", err)
	}
}

func (s *ContextSpy) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return Logger()
}
