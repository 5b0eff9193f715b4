package runtime

import (
	"errors"
	"fmt"
)

// ErrUnregisteredAgent indicates a dispatch to a name with no handler.
// This is a programming error: registration happens once at startup.
var ErrUnregisteredAgent = errors.New("no handler registered for agent")

// ErrTimeout indicates a handler did not complete within its budget.
var ErrTimeout = errors.New("agent handler timed out")

// CoercionError reports a failed conversion of a handler's output into
// the type the caller expected. It always names both sides.
type CoercionError struct {
	Target string
	Source string
	Err    error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert output to %s (source %s): %v", e.Target, e.Source, e.Err)
	}
	return fmt.Sprintf("cannot convert output to %s (source %s)", e.Target, e.Source)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// UnsupportedPayloadError reports a payload whose dynamic type matched
// none of a handler's accepted shapes.
type UnsupportedPayloadError struct {
	Agent   string
	Payload any
}

func (e *UnsupportedPayloadError) Error() string {
	return fmt.Sprintf("agent %s: unsupported payload shape %T", e.Agent, e.Payload)
}
