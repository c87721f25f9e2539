package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"comanda-backend/internal/errs"
)

func TestValidationError(t *testing.T) {
	err := errs.NewValidationError("quantity", "must be positive")

	assert.Equal(t, "validation failed: quantity: must be positive", err.Error())
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.False(t, errors.Is(err, errs.ErrNotFound))
}

func TestNotFoundError(t *testing.T) {
	err := errs.NewNotFoundError("menu item", int64(42))

	assert.Equal(t, "menu item 42 not found", err.Error())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestPermissionDeniedError(t *testing.T) {
	err := errs.NewPermissionDeniedError("no open shift")

	assert.Equal(t, "permission denied: no open shift", err.Error())
	assert.True(t, errors.Is(err, errs.ErrPermissionDenied))
}

func TestPreconditionFailedError(t *testing.T) {
	err := errs.NewPreconditionFailedError("undelivered items remain")

	assert.Equal(t, "precondition failed: undelivered items remain", err.Error())
	assert.True(t, errors.Is(err, errs.ErrPreconditionFailed))
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("update order: %w", errs.NewPreconditionFailedError("items pending"))

	assert.True(t, errors.Is(err, errs.ErrPreconditionFailed))

	var pf *errs.PreconditionFailedError
	assert.True(t, errors.As(err, &pf))
	assert.Equal(t, "items pending", pf.Reason)
}
