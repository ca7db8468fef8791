package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsValidation(t *testing.T) {
	err := NewValidationError("email", "is required")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.True(t, errors.Is(fmt.Errorf("signup: %w", err), ErrorValidation))
	assert.False(t, errors.Is(err, ErrorAlreadyExists))
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := NewValidationError("password", "is required").Add("email", "is invalid")

	assert.Equal(t, "validation error: email: is invalid; password: is required", err.Error())
}

func TestValidationError_Empty(t *testing.T) {
	var nilErr *ValidationError
	assert.True(t, nilErr.Empty())
	assert.True(t, (&ValidationError{}).Empty())
	assert.False(t, NewValidationError("x", "y").Empty())
}
