package gpuspy

import "fmt"

// onCommand is the dispatch funnel. Every armed interceptor calls it once per
// intercepted call, on the caller's goroutine, after the original member ran.
func (s *ContextSpy) onCommand(icpt Interceptor, call *CallInfo) error {
	if !s.lc.enabled {
		return nil
	}

	if err := s.opts.tagger.TagObjects(call); err != nil {
		return fmt.Errorf("gpuspy: tag %s: %w", call.Name, err)
	}
	if err := s.opts.recorder.RecordCommand(call); err != nil {
		return fmt.Errorf("gpuspy: record %s: %w", call.Name, err)
	}

	if !s.lc.recording() {
		return nil
	}
	c := s.lc.capture

	cmd := icpt.CreateCapture(call, s.NextCommandCaptureID())
	cmd.Marker = s.marker
	// Host reads made by the state collector are not commands of the capture.
	s.lc.enabled = false
	err := s.opts.state.CaptureState(cmd)
	s.lc.enabled = true
	if err != nil {
		return fmt.Errorf("gpuspy: capture state of %s: %w", call.Name, err)
	}
	c.Commands = append(c.Commands, cmd)
	cmd.EndTime = s.opts.clock.Now()

	if c.MaxCommands > 0 && len(c.Commands) == c.MaxCommands && s.opts.onMaxCommands != nil {
		s.opts.onMaxCommands(s)
	}
	return nil
}
