package gpuspy

import (
	"fmt"
	"maps"
	"slices"
)

// Table is an ordered function table implementing Host.
//
// It models a graphics context the way GL loaders do: every entry point is a
// named slot that callers go through via Call, so replacing a slot replaces
// the behavior seen by all callers.
//
// Example:
//
//	t := gpuspy.NewTable(2, gpuspy.Canvas{Width: 800, Height: 600})
//	t.Define("clear", func(args ...any) (any, error) { return nil, nil })
//	t.Define("COLOR_BUFFER_BIT", 0x4000)
//	_, err := t.Call("clear", 0x4000)
//
// Table is not safe for concurrent use.
type Table struct {
	version    int
	canvas     Canvas
	attributes map[string]any
	names      []string
	members    map[string]any
	extensions map[string]Surface
}

// NewTable creates an empty table for the given API version and canvas.
func NewTable(version int, canvas Canvas) *Table {
	return &Table{
		version:    version,
		canvas:     canvas,
		attributes: make(map[string]any),
		members:    make(map[string]any),
		extensions: make(map[string]Surface),
	}
}

// Define adds or replaces a member. New names keep definition order.
// Func literals may be passed with the plain func signature.
func (t *Table) Define(name string, value any) *Table {
	if fn, ok := value.(func(args ...any) (any, error)); ok {
		value = Func(fn)
	}
	if _, exists := t.members[name]; !exists {
		t.names = append(t.names, name)
	}
	t.members[name] = value
	return t
}

// SetAttribute records a context creation attribute.
func (t *Table) SetAttribute(key string, value any) *Table {
	t.attributes[key] = value
	return t
}

// AddExtension registers an extension sub-context under name.
func (t *Table) AddExtension(name string, ext Surface) *Table {
	t.extensions[name] = ext
	return t
}

// Call invokes the member name with args.
func (t *Table) Call(name string, args ...any) (any, error) {
	v, ok := t.members[name]
	if !ok {
		return nil, fmt.Errorf("gpuspy: unknown member %q", name)
	}
	fn, ok := v.(Func)
	if !ok {
		return nil, fmt.Errorf("gpuspy: member %q: %w", name, ErrNotCallable)
	}
	return fn(args...)
}

// Members returns member names in definition order.
func (t *Table) Members() []string {
	return slices.Clone(t.names)
}

// Member returns the current value of a member.
func (t *Table) Member(name string) (any, bool) {
	v, ok := t.members[name]
	return v, ok
}

// SetMember replaces an existing member.
func (t *Table) SetMember(name string, value any) error {
	if _, ok := t.members[name]; !ok {
		return fmt.Errorf("gpuspy: unknown member %q", name)
	}
	t.members[name] = value
	return nil
}

// Version returns the API version.
func (t *Table) Version() int { return t.version }

// Canvas returns the canvas metadata.
func (t *Table) Canvas() Canvas { return t.canvas }

// ContextAttributes returns a copy of the context attributes.
func (t *Table) ContextAttributes() map[string]any {
	return maps.Clone(t.attributes)
}

// Extensions returns a copy of the extension map.
func (t *Table) Extensions() map[string]Surface {
	return maps.Clone(t.extensions)
}
