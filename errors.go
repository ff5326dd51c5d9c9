package gpuspy

import "errors"

// ErrNotCallable is returned when an interceptor is asked to wrap a member
// whose value is not a Func.
var ErrNotCallable = errors.New("gpuspy: member is not callable")

// ErrNilHost is returned by NewContextSpy when no host is supplied.
var ErrNilHost = errors.New("gpuspy: host is nil")
