package gpuspy

import (
	"errors"
	"testing"
	"time"
)

// stubInterceptor records CreateCapture calls without touching any surface.
type stubInterceptor struct {
	created []int
}

func (s *stubInterceptor) Spy() error   { return nil }
func (s *stubInterceptor) UnSpy() error { return nil }

func (s *stubInterceptor) CreateCapture(call *CallInfo, id int) *CommandCapture {
	s.created = append(s.created, id)
	return &CommandCapture{ID: id, Name: call.Name}
}

func TestOnCommandDisabledSkipsCollaborators(t *testing.T) {
	h := newHarness(t)
	if err := h.spy.StartCapture(); err != nil {
		t.Fatal(err)
	}
	h.log.events = nil
	h.spy.Info().ToggleCapture(false)

	icpt := &stubInterceptor{}
	if err := h.spy.onCommand(icpt, &CallInfo{Name: "draw"}); err != nil {
		t.Fatalf("onCommand() = %v", err)
	}
	if len(h.log.events) != 0 {
		t.Errorf("collaborators called while disabled: %v", h.log.events)
	}
	if len(icpt.created) != 0 {
		t.Errorf("CreateCapture called while disabled: %v", icpt.created)
	}
}

func TestOnCommandWrappedDoesNotCapture(t *testing.T) {
	h := newHarness(t)
	icpt := &stubInterceptor{}
	if err := h.spy.onCommand(icpt, &CallInfo{Name: "clear"}); err != nil {
		t.Fatalf("onCommand() = %v", err)
	}
	if len(icpt.created) != 0 {
		t.Errorf("CreateCapture called without an open capture")
	}
	want := []string{"tagger.tag:clear", "recorder.record:clear"}
	if len(h.log.events) != len(want) || h.log.events[0] != want[0] || h.log.events[1] != want[1] {
		t.Errorf("events = %v, want %v", h.log.events, want)
	}
}

func TestOnCommandAssignsSequentialIDs(t *testing.T) {
	h := newHarness(t)
	if err := h.spy.StartCapture(); err != nil {
		t.Fatal(err)
	}
	icpt := &stubInterceptor{}
	for range 3 {
		if err := h.spy.onCommand(icpt, &CallInfo{Name: "draw"}); err != nil {
			t.Fatal(err)
		}
	}
	for i, id := range icpt.created {
		if id != i {
			t.Errorf("created[%d] = %d", i, id)
		}
	}

	c := h.spy.lc.capture
	for i, cmd := range c.Commands {
		if cmd.EndTime.IsZero() {
			t.Errorf("Commands[%d].EndTime not stamped", i)
		}
	}
}

func TestOnCommandStateFailureSkipsAppend(t *testing.T) {
	errSnapshot := errors.New("snapshot failed")
	h := newHarness(t)
	h.state.stateErr = errSnapshot
	if err := h.spy.StartCapture(); err != nil {
		t.Fatal(err)
	}

	err := h.spy.onCommand(&stubInterceptor{}, &CallInfo{Name: "draw"})
	if !errors.Is(err, errSnapshot) {
		t.Fatalf("onCommand() = %v, want snapshot error", err)
	}
	if n := len(h.spy.lc.capture.Commands); n != 0 {
		t.Errorf("capture has %d commands after failed snapshot", n)
	}
}

func TestOnCommandTaggerFailure(t *testing.T) {
	errTag := errors.New("tag table full")
	h := newHarness(t, WithObjectTagger(failingTagger{err: errTag}))
	h.spy.Spy()

	err := h.spy.onCommand(&stubInterceptor{}, &CallInfo{Name: "bindBuffer"})
	if !errors.Is(err, errTag) {
		t.Fatalf("onCommand() = %v, want tag error", err)
	}
	if len(h.recorder.recorded) != 0 {
		t.Errorf("recorder ran after tagger failure: %v", h.recorder.recorded)
	}
}

type failingTagger struct {
	err error
}

func (f failingTagger) TagObjects(*CallInfo) error { return f.err }
func (f failingTagger) TagObject(any) Tag          { return Tag{} }

func TestMaxCommandsHookFiresOnce(t *testing.T) {
	fired := 0
	h := newHarness(t, WithMaxCommandsHook(func(*ContextSpy) { fired++ }))
	if err := h.spy.StartCapture(WithMaxCommands(2)); err != nil {
		t.Fatal(err)
	}
	for range 5 {
		h.call(t, "draw")
	}
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}

	c, err := h.spy.StopCapture()
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Commands) != 5 {
		t.Errorf("capture has %d commands, want 5", len(c.Commands))
	}
}

func TestInterceptorTimestampsCall(t *testing.T) {
	h := newHarness(t)
	if err := h.spy.StartCapture(); err != nil {
		t.Fatal(err)
	}
	h.call(t, "draw", 3, 1)
	c, err := h.spy.StopCapture()
	if err != nil {
		t.Fatal(err)
	}

	cmd := c.Commands[0]
	if len(cmd.Arguments) != 2 || cmd.Arguments[0] != 3 || cmd.Result != "drawn" {
		t.Errorf("command = %+v", cmd)
	}
	for _, pair := range [][2]time.Time{
		{cmd.StartTime, cmd.CommandEndTime},
		{cmd.CommandEndTime, cmd.EndTime},
	} {
		if !pair[0].Before(pair[1]) {
			t.Errorf("timestamps out of order: %v !< %v", pair[0], pair[1])
		}
	}
}

// readingState reads host state from inside CaptureState.
type readingState struct {
	host      *Table
	capturing []bool
	info      *ContextInformation
}

func (r *readingState) StartCapture(*Capture) error { return nil }
func (r *readingState) StopCapture(*Capture) error  { return nil }

func (r *readingState) CaptureState(cmd *CommandCapture) error {
	r.capturing = append(r.capturing, r.info.Capturing())
	v, err := r.host.Call("getParameter", 0x0BA2)
	cmd.State = map[string]any{"viewport": v}
	return err
}

func TestStateCollectorHostReadsNotCaptured(t *testing.T) {
	h := newHarness(t)
	h.host.Define("getParameter", nopFunc([]int{0, 0, 640, 480}))
	rs := &readingState{host: h.host, info: h.spy.Info()}
	h.spy.opts.state = rs

	if err := h.spy.StartCapture(); err != nil {
		t.Fatal(err)
	}
	h.call(t, "draw")
	h.call(t, "clear")
	if !h.spy.IsCapturing() {
		t.Error("observation not resumed after state capture")
	}
	c, err := h.spy.StopCapture()
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Commands) != 2 {
		t.Fatalf("capture has %d commands, want 2: %+v", len(c.Commands), c.Commands)
	}
	for i, cmd := range c.Commands {
		if cmd.ID != i {
			t.Errorf("Commands[%d].ID = %d", i, cmd.ID)
		}
		if cmd.Name == "getParameter" {
			t.Errorf("Commands[%d] is the state collector's read", i)
		}
		if cmd.State["viewport"] == nil {
			t.Errorf("Commands[%d].State = %v", i, cmd.State)
		}
	}
	for _, name := range h.recorder.recorded {
		if name == "getParameter" {
			t.Errorf("recorder saw the state collector's read: %v", h.recorder.recorded)
		}
	}
	for i, on := range rs.capturing {
		if on {
			t.Errorf("observation on during CaptureState call %d", i)
		}
	}
}
