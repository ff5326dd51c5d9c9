package gpuspy

import (
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"testing"
)

// countingSurface counts SetMember calls per member name.
type countingSurface struct {
	*Table
	sets    map[string]int
	failFor string
}

func newCountingSurface(t *Table) *countingSurface {
	return &countingSurface{Table: t, sets: make(map[string]int)}
}

func (c *countingSurface) SetMember(name string, value any) error {
	if name == c.failFor {
		return errors.New("read-only member")
	}
	c.sets[name]++
	return c.Table.SetMember(name, value)
}

func newCountingHost() (*Table, *countingSurface, Host) {
	tbl := newTestHost()
	cs := newCountingSurface(tbl)
	return tbl, cs, cs
}

func funcPtr(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func TestSpyIdempotent(t *testing.T) {
	_, cs, host := newCountingHost()
	created := make(map[string]int)
	factory := func(name string, owner Surface, dispatch DispatchFunc, info *ContextInformation) (Interceptor, error) {
		created[name]++
		return NewCommandInterceptor(name, owner, dispatch, info)
	}

	spy, err := NewContextSpy(host, WithInterceptorFactory(factory), WithLogger(newNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	for range 4 {
		spy.Spy()
	}

	for _, name := range []string{"draw", "clear"} {
		if created[name] != 1 {
			t.Errorf("interceptor for %q created %d times, want 1", name, created[name])
		}
		if cs.sets[name] != 1 {
			t.Errorf("%q wrapped %d times, want 1", name, cs.sets[name])
		}
	}
	if _, ok := created["size"]; ok {
		t.Error("numeric member size got an interceptor")
	}
}

func TestInterceptorReusedAcrossUnSpy(t *testing.T) {
	created := 0
	factory := func(name string, owner Surface, dispatch DispatchFunc, info *ContextInformation) (Interceptor, error) {
		created++
		return NewCommandInterceptor(name, owner, dispatch, info)
	}
	tbl := newTestHost()
	spy, err := NewContextSpy(tbl, WithInterceptorFactory(factory), WithLogger(newNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	spy.Spy()
	spy.UnSpy()
	spy.Spy()
	if created != 2 {
		t.Errorf("factory called %d times, want 2 (draw and clear once each)", created)
	}
}

func TestEveryCallDispatchesOnce(t *testing.T) {
	h := newHarness(t)
	h.spy.Spy()
	h.spy.Spy()

	names := []string{"draw", "clear", "draw", "draw", "clear"}
	for _, n := range names {
		h.call(t, n)
	}
	if !slices.Equal(h.recorder.recorded, names) {
		t.Errorf("recorded = %v, want %v", h.recorder.recorded, names)
	}
}

func TestUnSpyRestoresOriginalBehavior(t *testing.T) {
	h := newHarness(t)
	before, _ := h.host.Member("draw")

	h.spy.Spy()
	wrapped, _ := h.host.Member("draw")
	if funcPtr(wrapped) == funcPtr(before) {
		t.Fatal("Spy did not replace draw")
	}

	h.spy.UnSpy()
	after, _ := h.host.Member("draw")
	if funcPtr(after) != funcPtr(before) {
		t.Error("UnSpy did not restore the original draw member")
	}
	if res := h.call(t, "draw"); res != "drawn" {
		t.Errorf("draw result = %v after UnSpy", res)
	}
	if len(h.recorder.recorded) != 0 {
		t.Errorf("restored member still dispatches: %v", h.recorder.recorded)
	}
}

func TestUnspyableMembersSkipped(t *testing.T) {
	tbl := newTestHost()
	for name := range unspyableMembers {
		tbl.Define(name, nopFunc(name))
	}
	var records []slog.Record
	spy, err := NewContextSpy(tbl, WithLogger(slog.New(recordHandler{records: &records})))
	if err != nil {
		t.Fatal(err)
	}
	spy.Spy()

	for name := range unspyableMembers {
		if _, ok := spy.interceptors[name]; ok {
			t.Errorf("deny-listed member %q was wrapped", name)
		}
	}
	if len(spy.interceptors) != 2 {
		t.Errorf("%d interceptors installed, want 2", len(spy.interceptors))
	}
	if errs := errorRecords(records); len(errs) != 0 {
		t.Errorf("unexpected errors logged: %d", len(errs))
	}
}

func TestInstallationFailureIsolated(t *testing.T) {
	tbl := newTestHost()
	tbl.Define("name", "not a function")

	var records []slog.Record
	spy, err := NewContextSpy(tbl, WithLogger(slog.New(recordHandler{records: &records})))
	if err != nil {
		t.Fatal(err)
	}
	spy.Spy()

	errs := errorRecords(records)
	if len(errs) != 1 {
		t.Fatalf("%d errors logged, want 1", len(errs))
	}
	if got := recordAttr(errs[0], "member"); got != "name" {
		t.Errorf("logged member = %q, want name", got)
	}
	for _, n := range []string{"draw", "clear"} {
		if _, ok := spy.interceptors[n]; !ok {
			t.Errorf("member %q not wrapped after unrelated failure", n)
		}
	}
	if spy.State() != StateWrapped {
		t.Errorf("State() = %v, want Wrapped", spy.State())
	}
}

func TestArmingFailureIsolated(t *testing.T) {
	_, cs, host := newCountingHost()
	cs.failFor = "draw"

	var records []slog.Record
	spy, err := NewContextSpy(host, WithLogger(slog.New(recordHandler{records: &records})))
	if err != nil {
		t.Fatal(err)
	}
	spy.Spy()

	errs := errorRecords(records)
	if len(errs) != 1 || recordAttr(errs[0], "member") != "draw" {
		t.Fatalf("errors logged = %d, want one for draw", len(errs))
	}
	if cs.sets["clear"] != 1 {
		t.Errorf("clear wrapped %d times, want 1", cs.sets["clear"])
	}
}

func TestDeclaredOperations(t *testing.T) {
	tbl := newTestHost()
	spy, err := NewContextSpy(tbl, WithOperations("draw", "missing", "size"), WithLogger(newNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	spy.Spy()

	if _, ok := spy.interceptors["draw"]; !ok {
		t.Error("declared operation draw not wrapped")
	}
	if len(spy.interceptors) != 1 {
		t.Errorf("%d interceptors, want only draw", len(spy.interceptors))
	}
}

func TestExtensionsWrapped(t *testing.T) {
	tbl := newTestHost()
	ext := NewTable(2, Canvas{}).
		Define("drawArraysInstancedANGLE", nopFunc(nil)).
		Define("VERTEX_ATTRIB_ARRAY_DIVISOR_ANGLE", 0x88FE)
	tbl.AddExtension("ANGLE_instanced_arrays", ext)

	h := &harness{host: tbl, log: &eventLog{}}
	h.recorder = &mockRecorder{log: h.log}
	spy, err := NewContextSpy(tbl, WithRecorder(h.recorder), WithLogger(newNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := spy.StartCapture(); err != nil {
		t.Fatal(err)
	}
	if _, err := ext.Call("drawArraysInstancedANGLE", 4, 0, 3, 10); err != nil {
		t.Fatal(err)
	}
	h.call(t, "draw")
	c, err := spy.StopCapture()
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Commands) != 2 || c.Commands[0].Name != "drawArraysInstancedANGLE" {
		t.Errorf("Commands = %+v", c.Commands)
	}
	if !c.Context.Extensions["ANGLE_instanced_arrays"] {
		t.Errorf("Context.Extensions = %v", c.Context.Extensions)
	}
	if names := spy.Info().ExtensionNames(); !slices.Equal(names, []string{"ANGLE_instanced_arrays"}) {
		t.Errorf("ExtensionNames() = %v", names)
	}
	if v, _ := ext.Member("VERTEX_ATTRIB_ARRAY_DIVISOR_ANGLE"); v != 0x88FE {
		t.Errorf("extension constant changed to %v", v)
	}
}

func TestIsNumericConstant(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{0x4000, true},
		{uint32(3), true},
		{float32(1.5), true},
		{2.0, true},
		{"GL_VENDOR", false},
		{nil, false},
		{nopFunc(nil), false},
		{true, false},
	}
	for _, tt := range tests {
		if got := isNumericConstant(tt.v); got != tt.want {
			t.Errorf("isNumericConstant(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
