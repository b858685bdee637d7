package errors

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ConstraintViolation is one uniqueness violation reported by the database.
type ConstraintViolation struct {
	Constraint string `json:"constraint"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// UniqueConstraintError is raised by repositories when a write violates a
// unique index. The error handler maps it to 409.
type UniqueConstraintError struct {
	Violations []ConstraintViolation
	Err        error

	captured atomic.Bool
}

// NewUniqueConstraintError creates a uniqueness conflict wrapping the driver error.
func NewUniqueConstraintError(err error, violations ...ConstraintViolation) *UniqueConstraintError {
	return &UniqueConstraintError{Violations: violations, Err: err}
}

// Error implements the error interface
func (e *UniqueConstraintError) Error() string {
	if len(e.Violations) > 0 {
		return fmt.Sprintf("unique constraint violated: %s", e.Violations[0].Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("unique constraint violated: %v", e.Err)
	}
	return "unique constraint violated"
}

// Unwrap returns the underlying driver error
func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

// IsUniqueConstraint checks if the error is a uniqueness conflict from persistence
func IsUniqueConstraint(err error) bool {
	var ue *UniqueConstraintError
	return errors.As(err, &ue)
}

// GetUniqueConstraintError extracts the uniqueness conflict if present
func GetUniqueConstraintError(err error) *UniqueConstraintError {
	var ue *UniqueConstraintError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// MarkCaptured flags a failure as having had its full context recorded and
// reports whether this call was the first to do so. Errors outside the
// AppError taxonomy carry no marker and always report true.
func MarkCaptured(err error) bool {
	if err == nil {
		return false
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.captured.CompareAndSwap(false, true)
	}
	if ue := GetUniqueConstraintError(err); ue != nil {
		return ue.captured.CompareAndSwap(false, true)
	}
	return true
}

// IsCaptured reports whether MarkCaptured has already been called for err.
func IsCaptured(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.captured.Load()
	}
	if ue := GetUniqueConstraintError(err); ue != nil {
		return ue.captured.Load()
	}
	return false
}
