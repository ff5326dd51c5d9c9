package gpuspy

import "reflect"

// Func is a callable member of a host surface.
// Hosts expose their graphics entry points as Func values so that the
// installation engine can replace them with intercepting wrappers.
type Func func(args ...any) (any, error)

// Surface is an enumerable set of named members.
// A member value is either a Func (callable) or a plain constant.
//
// Members returns names in a stable order. SetMember replaces a member in
// place; it is how interceptors are installed and removed.
type Surface interface {
	Members() []string
	Member(name string) (any, bool)
	SetMember(name string, value any) error
}

// Canvas describes the drawing surface attached to a host context.
type Canvas struct {
	Width        int
	Height       int
	ClientWidth  int
	ClientHeight int
}

// Host is the live graphics-API context being observed.
// Extension sub-contexts share the Surface shape of the primary context.
type Host interface {
	Surface

	// Version returns the API version of the context (for example 1 or 2).
	Version() int

	// Canvas returns the size metadata of the attached drawing surface.
	Canvas() Canvas

	// ContextAttributes returns the attributes the context was created with.
	ContextAttributes() map[string]any

	// Extensions returns the available extension sub-contexts by name.
	Extensions() map[string]Surface
}

// isNumericConstant reports whether v is a plain numeric value.
// Numeric members are API enums and are never wrapped.
func isNumericConstant(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
