package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrSampleTimeout       = errors.New("location sample timeout")

	ErrInsufficientDistance = errors.New("insufficient distance to save activity")
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrPersistence          = errors.New("activity persistence failed")
	ErrNothingToRetry       = errors.New("no unsaved activity to retry")
	ErrSaveInProgress       = errors.New("activity save already in progress")
)

// PersistenceError wraps a failed create-activity call. The finalized record
// stays on the session so the caller can retry or export it.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPersistence, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// SourceErrorFromCode maps the platform error codes onto sample-source errors.
func SourceErrorFromCode(code string) (error, bool) {
	switch code {
	case "permission-denied", "PERMISSION_DENIED", "1":
		return ErrPermissionDenied, true
	case "position-unavailable", "POSITION_UNAVAILABLE", "2":
		return ErrPositionUnavailable, true
	case "timeout", "TIMEOUT", "3":
		return ErrSampleTimeout, true
	}
	return nil, false
}

func transitionError(from Status, op string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, op, from)
}
