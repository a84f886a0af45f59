package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaUnavailable marks a schema document that could not be
	// fetched or parsed. Recorded as a resolution note, never fatal.
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrReferenceNotFound marks a dangling pointer inside an
	// otherwise reachable schema document.
	ErrReferenceNotFound = errors.New("reference not found")
)

// ResolutionError is a note attached to a Resolved schema: one
// reference that could not be dereferenced, or a detected cycle.
type ResolutionError struct {
	URI     string
	Pointer string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Pointer == "" {
		return fmt.Sprintf("%s: %v", e.URI, e.Err)
	}
	return fmt.Sprintf("%s#%s: %v", e.URI, e.Pointer, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Dangling reports whether the failure was a missing pointer target
// inside a reachable document, as opposed to an unreachable document.
func (e *ResolutionError) Dangling() bool {
	return errors.Is(e.Err, ErrReferenceNotFound)
}
