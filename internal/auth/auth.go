// Package auth provides account sign-in, sign-up, sign-out and password reset.
package auth

import (
	"context"
	"time"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Session is the signed-in account.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType names a session change.
type EventType string

// Session change events.
const (
	EventSignedIn         EventType = "signed_in"
	EventSignedOut        EventType = "signed_out"
	EventPasswordRecovery EventType = "password_recovery"
)

// Event is delivered to subscribers when the session changes.
// Session is nil for EventSignedOut.
type Event struct {
	Type    EventType
	Session *Session
}

// Service is the account backend consumed by the app.
type Service interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	CurrentSession() (Session, bool)
	Subscribe() (<-chan Event, func())
}

// Mailer delivers password reset tokens.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// MailerFunc adapts a function to Mailer.
type MailerFunc func(ctx context.Context, email, token string) error

// SendPasswordReset implements Mailer.
func (f MailerFunc) SendPasswordReset(ctx context.Context, email, token string) error {
	return f(ctx, email, token)
}
