package host

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

var (
	// ErrNotRunning is returned when a call is made on a stopped Process.
	ErrNotRunning = errors.New("sidecar is not running")

	// ErrClosed is returned for calls pending or issued after the
	// sidecar's output stream ended.
	ErrClosed = errors.New("sidecar connection closed")
)

// RemoteError is a failure reported by the sidecar in a response.
type RemoteError struct {
	ID      string
	Func    sidecar.Func
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sidecar error: %s", e.Message)
}

// InvalidResponseError is returned when a successful response carries no
// data or data of an unexpected shape.
type InvalidResponseError struct {
	ID     string
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response %s: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid response %s: %s", e.ID, e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
