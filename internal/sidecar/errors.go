package sidecar

import "fmt"

// UnsupportedFuncError is returned when a command names an operation
// outside the supported set.
type UnsupportedFuncError struct {
	Func Func
}

func (e *UnsupportedFuncError) Error() string {
	return fmt.Sprintf("unsupported function: %s", e.Func)
}

// ParamsError is returned when a command's params do not decode into the
// shape its operation expects, or fail validation.
type ParamsError struct {
	Func Func
	Err  error
}

func (e *ParamsError) Error() string {
	return fmt.Sprintf("invalid params for %s: %v", e.Func, e.Err)
}

func (e *ParamsError) Unwrap() error { return e.Err }
