package gpuspy

import "fmt"

// DispatchFunc is the callback every armed interceptor invokes once per call.
type DispatchFunc func(icpt Interceptor, call *CallInfo) error

// Interceptor wraps one callable member of a surface.
//
// Spy installs (arms) the wrapper and UnSpy restores the original member.
// Both must be idempotent. CreateCapture materializes the record of a call.
type Interceptor interface {
	Spy() error
	UnSpy() error
	CreateCapture(call *CallInfo, id int) *CommandCapture
}

// InterceptorFactory creates the interceptor for member name of owner.
type InterceptorFactory func(name string, owner Surface, dispatch DispatchFunc, info *ContextInformation) (Interceptor, error)

// commandInterceptor is the default Interceptor. It swaps the member with a
// Func that calls the original and then reports the call to dispatch.
type commandInterceptor struct {
	name     string
	owner    Surface
	original Func
	wrapped  Func
	armed    bool
	dispatch DispatchFunc
	info     *ContextInformation
}

// NewCommandInterceptor is the default InterceptorFactory.
// It returns ErrNotCallable when the member is not a Func.
func NewCommandInterceptor(name string, owner Surface, dispatch DispatchFunc, info *ContextInformation) (Interceptor, error) {
	v, ok := owner.Member(name)
	if !ok {
		return nil, fmt.Errorf("gpuspy: member %q not found", name)
	}
	fn, ok := v.(Func)
	if !ok {
		return nil, fmt.Errorf("gpuspy: member %q (%T): %w", name, v, ErrNotCallable)
	}

	ci := &commandInterceptor{
		name:     name,
		owner:    owner,
		original: fn,
		dispatch: dispatch,
		info:     info,
	}
	ci.wrapped = ci.call
	return ci, nil
}

func (ci *commandInterceptor) call(args ...any) (any, error) {
	start := ci.info.Now()
	result, err := ci.original(args...)
	call := &CallInfo{
		Name:      ci.name,
		Arguments: args,
		Result:    result,
		Err:       err,
		StartTime: start,
		EndTime:   ci.info.Now(),
	}
	if derr := ci.dispatch(ci, call); derr != nil {
		return result, derr
	}
	return result, err
}

func (ci *commandInterceptor) Spy() error {
	if ci.armed {
		return nil
	}
	if err := ci.owner.SetMember(ci.name, ci.wrapped); err != nil {
		return fmt.Errorf("gpuspy: install %q: %w", ci.name, err)
	}
	ci.armed = true
	return nil
}

func (ci *commandInterceptor) UnSpy() error {
	if !ci.armed {
		return nil
	}
	if err := ci.owner.SetMember(ci.name, ci.original); err != nil {
		return fmt.Errorf("gpuspy: restore %q: %w", ci.name, err)
	}
	ci.armed = false
	return nil
}

func (ci *commandInterceptor) CreateCapture(call *CallInfo, id int) *CommandCapture {
	return &CommandCapture{
		ID:             id,
		Name:           call.Name,
		Arguments:      call.Arguments,
		Result:         call.Result,
		Err:            call.Err,
		Tags:           call.Tags,
		StartTime:      call.StartTime,
		CommandEndTime: call.EndTime,
	}
}
