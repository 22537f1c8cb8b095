package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"loja/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := apperr.Validation("limit", "must be an integer >= -1")
	assert.Equal(t, "limit: must be an integer >= -1", err.Error())
	assert.True(t, apperr.IsValidation(err))

	wrapped := fmt.Errorf("parse query: %w", err)
	assert.True(t, apperr.IsValidation(wrapped))

	assert.Equal(t, "no field", (&apperr.ValidationError{Message: "no field"}).Error())
	assert.False(t, apperr.IsValidation(errors.New("plain")))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("product with ID 7: %w", apperr.ErrNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrConflict)
}
