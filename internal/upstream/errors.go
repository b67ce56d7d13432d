package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps network-level failures talking to the upstream
	ErrTransport = errors.New("upstream transport failure")

	// ErrInvalidResponse is returned when the upstream body is not JSON
	ErrInvalidResponse = errors.New("upstream returned invalid response")
)

// Error is a failure reported by the upstream in its response body
type Error struct {
	Code string
	Desc string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s -- %s", e.Code, e.Desc)
}
