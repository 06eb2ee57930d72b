package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/store"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

const subscriberBuffer = 8

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Local is a Service backed by the local SQLite database. The current
// session is kept in storage so separate invocations share it.
type Local struct {
	db      *sql.DB
	storage store.Storage
	mailer  Mailer
	log     *zap.Logger
	now     func() time.Time
	cost    int

	mu      sync.Mutex
	session *Session
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

var _ Service = (*Local)(nil)

// LocalOption configures Local.
type LocalOption func(*Local)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) LocalOption {
	return func(a *Local) {
		a.log = logging.OrNop(l)
	}
}

// WithMailer sets the reset token mailer. The default logs tokens.
func WithMailer(m Mailer) LocalOption {
	return func(a *Local) {
		a.mailer = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LocalOption {
	return func(a *Local) {
		a.now = now
	}
}

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) LocalOption {
	return func(a *Local) {
		a.cost = cost
	}
}

// NewLocal migrates the account tables in db and restores a saved session.
func NewLocal(ctx context.Context, db *sql.DB, storage store.Storage, opts ...LocalOption) (*Local, error) {
	a := &Local{
		db:      db,
		storage: storage,
		log:     zap.NewNop(),
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
		subs:    map[int]chan Event{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.mailer == nil {
		a.mailer = logMailer(a.log)
	}
	if err := a.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate auth tables: %w", err)
	}
	if err := a.restoreSession(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func logMailer(log *zap.Logger) Mailer {
	return MailerFunc(func(_ context.Context, email, token string) error {
		log.Info("password reset requested", zap.String("email", email), zap.String("token", token))
		return nil
	})
}

func (a *Local) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS password_resets (
			token TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			used INTEGER NOT NULL DEFAULT 0
		);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Local) restoreSession(ctx context.Context) error {
	raw, ok, err := a.storage.Get(ctx, store.KeySession)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.UserID == "" {
		a.log.Warn("discarding corrupted session", zap.Error(err))
		if rerr := a.storage.Remove(ctx, store.KeySession); rerr != nil {
			return fmt.Errorf("failed to remove session: %w", rerr)
		}
		return nil
	}
	a.session = &s
	return nil
}

// SignUp creates an account and signs it in.
func (a *Local) SignUp(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, err
	}
	if len(password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}
	if _, _, err := a.findAccount(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, internalError("Could not create account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return Session{}, internalError("Could not create account", err)
	}
	id := uuid.NewString()
	query, args, err := sqlBuilder.Insert("accounts").
		Columns("id", "email", "password_hash", "created_at").
		Values(id, email, string(hash), a.now().UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return Session{}, internalError("Could not create account", err)
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return Session{}, internalError("Could not create account", err)
	}
	a.log.Debug("account created", zap.String("user_id", id))
	return a.startSession(ctx, id, email, EventSignedIn)
}

// SignIn verifies the credentials and starts a session.
func (a *Local) SignIn(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	id, hash, err := a.findAccount(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, internalError("Could not sign in", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return a.startSession(ctx, id, email, EventSignedIn)
}

// SignOut ends the current session. Signing out twice is not an error.
func (a *Local) SignOut(ctx context.Context) error {
	a.mu.Lock()
	had := a.session != nil
	a.session = nil
	a.mu.Unlock()
	if err := a.storage.Remove(ctx, store.KeySession); err != nil {
		return internalError("Could not sign out", err)
	}
	if had {
		a.notify(Event{Type: EventSignedOut})
	}
	return nil
}

// ResetPassword issues a reset token for email. Unknown addresses succeed
// silently so the response does not reveal which accounts exist.
func (a *Local) ResetPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	id, _, err := a.findAccount(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		a.log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return internalError("Could not send reset email", err)
	}
	token := uuid.NewString()
	query, args, err := sqlBuilder.Insert("password_resets").
		Columns("token", "account_id", "expires_at").
		Values(token, id, a.now().Add(ResetTokenTTL).UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return internalError("Could not send reset email", err)
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return internalError("Could not send reset email", err)
	}
	if err := a.mailer.SendPasswordReset(ctx, email, token); err != nil {
		return internalError("Could not send reset email", err)
	}
	return nil
}

// CompletePasswordReset sets a new password using a reset token and signs
// the account in.
func (a *Local) CompletePasswordReset(ctx context.Context, token, newPassword string) (Session, error) {
	if len(newPassword) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.cost)
	if err != nil {
		return Session{}, internalError("Could not reset password", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, internalError("Could not reset password", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			a.log.Warn("rollback failed", zap.Error(rerr))
		}
	}()

	query, args, err := sqlBuilder.Select("r.account_id", "r.expires_at", "a.email").
		From("password_resets r").
		Join("accounts a ON a.id = r.account_id").
		Where(squirrel.Eq{"r.token": token, "r.used": 0}).
		ToSql()
	if err != nil {
		return Session{}, internalError("Could not reset password", err)
	}
	var accountID, expiresAt, email string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&accountID, &expiresAt, &email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, internalError("Could not reset password", err)
	}
	expires, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return Session{}, internalError("Could not reset password", err)
	}
	if !a.now().Before(expires) {
		return Session{}, ErrInvalidToken
	}

	updates := []squirrel.UpdateBuilder{
		sqlBuilder.Update("accounts").Set("password_hash", string(hash)).Where(squirrel.Eq{"id": accountID}),
		sqlBuilder.Update("password_resets").Set("used", 1).Where(squirrel.Eq{"token": token}),
	}
	for _, ub := range updates {
		q, qargs, err := ub.ToSql()
		if err != nil {
			return Session{}, internalError("Could not reset password", err)
		}
		if _, err := tx.ExecContext(ctx, q, qargs...); err != nil {
			return Session{}, internalError("Could not reset password", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Session{}, internalError("Could not reset password", err)
	}
	return a.startSession(ctx, accountID, email, EventPasswordRecovery)
}

// CurrentSession returns the signed-in session, if any.
func (a *Local) CurrentSession() (Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return Session{}, false
	}
	return *a.session, true
}

// Subscribe registers for session change events. The returned function
// unsubscribes and closes the channel. Events are dropped for subscribers
// whose buffer is full.
func (a *Local) Subscribe() (<-chan Event, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if a.closed {
		close(ch)
		return ch, func() {}
	}
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if c, ok := a.subs[id]; ok {
				delete(a.subs, id)
				close(c)
			}
		})
	}
}

// Close closes every subscriber channel. The database is owned by the caller.
func (a *Local) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
	return nil
}

func (a *Local) startSession(ctx context.Context, userID, email string, ev EventType) (Session, error) {
	s := Session{
		UserID:    userID,
		Email:     email,
		Token:     uuid.NewString(),
		CreatedAt: a.now(),
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return Session{}, internalError("Could not start session", err)
	}
	if err := a.storage.Set(ctx, store.KeySession, string(raw)); err != nil {
		return Session{}, internalError("Could not start session", err)
	}
	a.mu.Lock()
	a.session = &s
	a.mu.Unlock()
	a.notify(Event{Type: ev, Session: &s})
	return s, nil
}

func (a *Local) notify(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, ch := range a.subs {
		select {
		case ch <- ev:
		default:
			a.log.Warn("dropping auth event for slow subscriber", zap.Int("subscriber", id), zap.String("event", string(ev.Type)))
		}
	}
}

func (a *Local) findAccount(ctx context.Context, email string) (id, hash string, err error) {
	query, args, err := sqlBuilder.Select("id", "password_hash").
		From("accounts").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return "", "", err
	}
	err = a.db.QueryRowContext(ctx, query, args...).Scan(&id, &hash)
	return id, hash, err
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
