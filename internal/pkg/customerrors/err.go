package customerrors

import (
	"errors"
	"strings"
)

var (
	ErrDecodingRequestBody = errors.New("failed to decode request body")
	ErrNoData              = errors.New("no data provided in request body")
	ErrNoUpdateData        = errors.New("no data provided for update")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMessageNotFound     = errors.New("message not found")
	ErrDatabase            = errors.New("database error")
)

// ValidationError lists every rejected field of a payload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
