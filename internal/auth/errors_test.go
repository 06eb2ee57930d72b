package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("sign in: %w", &Error{Code: CodeInvalidCredentials, Message: "custom"})
	assert.True(t, errors.Is(wrapped, ErrInvalidCredentials))
	assert.False(t, errors.Is(wrapped, ErrEmailTaken))
	assert.Equal(t, "custom", UserMessage(wrapped))
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := internalError("Could not sign in", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(cause))
}
