// Package guest manages the locally stored guest profile.
package guest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

// Store owns the single guest profile of a storage origin.
// Methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage store.Storage
	key     string
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	profile *model.GuestProfile
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = logging.OrNop(l)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDFunc overrides profile id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// Open creates a Store and loads any previously saved profile.
// A corrupted record is discarded and the store starts without a profile.
func Open(ctx context.Context, storage store.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		storage: storage,
		key:     store.KeyGuest,
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to read guest profile: %w", err)
	}
	if !ok {
		return nil
	}
	profile, migrated, err := decodeProfile(raw)
	if err != nil {
		s.log.Warn("discarding corrupted guest profile", zap.String("key", s.key), zap.Error(err))
		if rerr := s.storage.Remove(ctx, s.key); rerr != nil {
			return fmt.Errorf("failed to remove corrupted guest profile: %w", rerr)
		}
		return nil
	}
	s.profile = &profile
	if migrated {
		s.log.Info("migrated guest profile", zap.String("id", profile.ID), zap.Int("version", schemaVersion))
		return s.persist(ctx)
	}
	return nil
}

// IsGuest reports whether guest mode is active.
func (s *Store) IsGuest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile != nil
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() (model.GuestProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return model.GuestProfile{}, false
	}
	return s.profile.Clone(), true
}

// CreateGuestUser replaces any stored profile with a fresh one and
// activates guest mode.
func (s *Store) CreateGuestUser(ctx context.Context) (model.GuestProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := model.GuestProfile{
		ID:        s.newID(),
		CreatedAt: s.now(),
		TypingStats: model.TypingStats{
			WPM:      []float64{},
			Accuracy: []float64{},
			Dates:    []time.Time{},
		},
		Achievements: []string{},
		Preferences:  model.DefaultPreferences(),
	}
	prev := s.profile
	s.profile = &profile
	if err := s.persist(ctx); err != nil {
		s.profile = prev
		return model.GuestProfile{}, err
	}
	s.log.Debug("created guest profile", zap.String("id", profile.ID))
	return profile.Clone(), nil
}

// UpdateGuestStats appends one test result to the history. No-op without a profile.
func (s *Store) UpdateGuestStats(ctx context.Context, wpm, accuracy float64) error {
	return s.mutate(ctx, func(p *model.GuestProfile) bool {
		p.TypingStats.WPM = append(p.TypingStats.WPM, wpm)
		p.TypingStats.Accuracy = append(p.TypingStats.Accuracy, accuracy)
		p.TypingStats.Dates = append(p.TypingStats.Dates, s.now())
		return true
	})
}

// UpdateGuestPreferences merges patch into the preferences. No-op without a profile.
func (s *Store) UpdateGuestPreferences(ctx context.Context, patch model.PreferencesPatch) error {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", *patch.Theme)
	}
	return s.mutate(ctx, func(p *model.GuestProfile) bool {
		p.Preferences = patch.Apply(p.Preferences)
		return true
	})
}

// AddGuestAchievement records id as unlocked. It reports whether the id was
// newly added; a missing profile or a known id is a no-op.
func (s *Store) AddGuestAchievement(ctx context.Context, id string) (bool, error) {
	added := false
	err := s.mutate(ctx, func(p *model.GuestProfile) bool {
		if p.HasAchievement(id) {
			return false
		}
		p.Achievements = append(p.Achievements, id)
		added = true
		return true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// ClearGuestData deletes the stored profile and deactivates guest mode.
func (s *Store) ClearGuestData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	if err := s.storage.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to remove guest profile: %w", err)
	}
	return nil
}

// mutate applies fn to a working copy and persists it when fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func(p *model.GuestProfile) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	next := s.profile.Clone()
	if !fn(&next) {
		return nil
	}
	prev := s.profile
	s.profile = &next
	if err := s.persist(ctx); err != nil {
		s.profile = prev
		return err
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := encodeProfile(*s.profile)
	if err != nil {
		return fmt.Errorf("failed to encode guest profile: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to save guest profile: %w", err)
	}
	return nil
}
