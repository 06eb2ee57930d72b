package auth

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailTaken         = "email_taken"
	CodeInvalidEmail       = "invalid_email"
	CodeWeakPassword       = "weak_password"
	CodeInvalidToken       = "invalid_token"
	CodeInternal           = "internal"
)

// Error is a structured auth failure. Message is safe to show to the user.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same code, so callers can compare against the
// exported sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrEmailTaken         = &Error{Code: CodeEmailTaken, Message: "An account with this email already exists"}
	ErrInvalidEmail       = &Error{Code: CodeInvalidEmail, Message: "Please enter a valid email address"}
	ErrWeakPassword       = &Error{Code: CodeWeakPassword, Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Message: "Reset link is invalid or has expired"}
)

func internalError(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong. Please try again."
}
