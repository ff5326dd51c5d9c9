package gpuspy

// State is the capture lifecycle state of a ContextSpy.
type State uint8

const (
	// StateUnwrapped: no interceptors installed, no open capture.
	StateUnwrapped State = iota
	// StateWrapped: interceptors installed, no open capture.
	StateWrapped
	// StateRecording: interceptors installed, one open capture.
	StateRecording
)

var stateNames = [...]string{
	StateUnwrapped: "Unwrapped",
	StateWrapped:   "Wrapped",
	StateRecording: "Recording",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// lifecycle owns the state value, the global enable flag and the open capture.
// capture is non-nil exactly when state is StateRecording.
type lifecycle struct {
	state   State
	enabled bool
	capture *Capture
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateUnwrapped, enabled: true}
}

func (l *lifecycle) recording() bool {
	return l.state == StateRecording
}

// observing is the externally visible capturing predicate.
func (l *lifecycle) observing() bool {
	return l.enabled && l.state == StateRecording
}

// wrap moves Unwrapped to Wrapped. Recording is kept.
func (l *lifecycle) wrap() {
	if l.state == StateUnwrapped {
		l.state = StateWrapped
	}
}

// unwrap moves to Unwrapped, dropping any open capture.
func (l *lifecycle) unwrap() {
	l.state = StateUnwrapped
	l.capture = nil
}

// open enters Recording with c as the current capture,
// replacing any capture already open.
func (l *lifecycle) open(c *Capture) {
	l.state = StateRecording
	l.capture = c
}

// close leaves Recording and returns the capture that was open.
func (l *lifecycle) close() *Capture {
	c := l.capture
	l.capture = nil
	if l.state == StateRecording {
		l.state = StateWrapped
	}
	return c
}
