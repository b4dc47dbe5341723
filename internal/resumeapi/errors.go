package resumeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStalePosition is matched (via errors.Is) by a *PersistError whose target
// position no longer exists on the backend. A fresh load is required before retrying.
var ErrStalePosition = errors.New("stale position")

// TransportError represents a failure to obtain a usable response: the connection
// failed, the response was non-2xx for a read, or the body could not be decoded.
type TransportError struct {
	Op            string
	URL           string
	StatusCode    int // zero when no response was received
	Message       string
	ServerMessage string // backend {"error": ...} text, if any
	Cause         error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// PersistError represents a non-2xx response to a write (create, replace, delete).
// ServerMessage holds the backend's {"error": ...} text when one was sent.
type PersistError struct {
	Op            string
	Kind          string
	Position      int // -1 for creates
	StatusCode    int
	ServerMessage string
	Stale         bool
}

func (e *PersistError) Error() string {
	target := e.Kind
	if e.Position >= 0 {
		target = fmt.Sprintf("%s[%d]", e.Kind, e.Position)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, target, e.Message())
}

// Message returns the displayable reason: the server's message when present,
// otherwise a status-derived fallback.
func (e *PersistError) Message() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	if e.Stale && e.StatusCode == 0 {
		return fmt.Sprintf("position %d is no longer valid; reload before retrying", e.Position)
	}
	return statusMessage(e.StatusCode)
}

// Is makes errors.Is(err, ErrStalePosition) true for stale-position failures.
func (e *PersistError) Is(target error) bool {
	return target == ErrStalePosition && e.Stale
}

// NewStalePositionError builds the error returned when a position is rejected
// locally, before any request is sent.
func NewStalePositionError(op, kind string, position int) *PersistError {
	return &PersistError{Op: op, Kind: kind, Position: position, Stale: true}
}

// IsRetryable reports whether the same request may be retried as-is.
// Stale positions and validation rejections (4xx other than 429) are not retryable.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return retryableStatus(transportErr.StatusCode)
	}
	var persistErr *PersistError
	if errors.As(err, &persistErr) {
		return !persistErr.Stale && persistErr.StatusCode != 0 && retryableStatus(persistErr.StatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}

// DisplayMessage converts an error from this package into text suitable for an alert.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var persistErr *PersistError
	if errors.As(err, &persistErr) {
		return persistErr.Message()
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.ServerMessage != "" {
			return transportErr.ServerMessage
		}
		if transportErr.StatusCode != 0 && !isSuccess(transportErr.StatusCode) {
			return statusMessage(transportErr.StatusCode)
		}
		return transportErr.Message
	}
	return err.Error()
}

func statusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
