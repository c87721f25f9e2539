// Package errs defines the error taxonomy shared by the store and API
// layers. Each category carries a sentinel so callers can classify an
// error with errors.Is and map it to the right HTTP status.
package errs

import "fmt"

var (
	ErrValidation         = fmt.Errorf("validation failed")
	ErrNotFound           = fmt.Errorf("not found")
	ErrPermissionDenied   = fmt.Errorf("permission denied")
	ErrPreconditionFailed = fmt.Errorf("precondition failed")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PermissionDeniedError reports a failed capability or shift-gate check.
type PermissionDeniedError struct {
	Reason string
}

func NewPermissionDeniedError(reason string) *PermissionDeniedError {
	return &PermissionDeniedError{Reason: reason}
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// PreconditionFailedError reports a violated business-rule precondition,
// such as billing a table that still has undelivered items. Reason is
// meant to be shown to staff as-is.
type PreconditionFailedError struct {
	Reason string
}

func NewPreconditionFailedError(reason string) *PreconditionFailedError {
	return &PreconditionFailedError{Reason: reason}
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

func (e *PreconditionFailedError) Unwrap() error { return ErrPreconditionFailed }
