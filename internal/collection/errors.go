package collection

import (
	"fmt"

	"github.com/jonathan/resume-editor/internal/types"
)

// RefreshError reports that a write was confirmed by the backend but the reload
// that follows it failed. The write is committed; the mirror is stale until the
// next successful Load, and no position from it will resolve.
type RefreshError struct {
	Op    string
	Kind  types.Kind
	Cause error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s %s succeeded but reload failed: %v", e.Op, e.Kind, e.Cause)
}

func (e *RefreshError) Unwrap() error {
	return e.Cause
}
