package customerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"chatterbox/internal/pkg/customerrors"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create message: %w", &customerrors.ValidationError{
		Messages: []string{"body is required", "username is required"},
	})

	assert.ErrorIs(t, err, customerrors.ErrInvalidInput)
	assert.NotErrorIs(t, err, customerrors.ErrDatabase)

	var verr *customerrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"body is required", "username is required"}, verr.Messages)
	assert.Equal(t, "invalid input: body is required; username is required", verr.Error())
}
