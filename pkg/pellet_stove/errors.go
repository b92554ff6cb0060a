package pellet_stove

import "fmt"

// TransportError covers connect failures, timeouts and aborted or
// closed responses. The request never reached a well-formed HTTP
// exchange with the stove.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stove transport error (%s): %s", e.Op, e.Cause)
	}
	return fmt.Sprintf("stove transport error (%s)", e.Op)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ProtocolError covers non-200 responses and malformed JSON bodies.
type ProtocolError struct {
	StatusCode int
	Reason     string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stove protocol error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("stove protocol error: %s", e.Reason)
}
