// Package app wires the guest store, personal bests and auth service into a
// single per-process session.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/keysprint/internal/achievements"
	"github.com/verte-zerg/keysprint/internal/auth"
	"github.com/verte-zerg/keysprint/internal/bests"
	"github.com/verte-zerg/keysprint/internal/guest"
	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/model"
)

// Session holds the collaborators shared by commands and views.
type Session struct {
	Guest *guest.Store
	Bests *bests.Ranking
	Auth  auth.Service
	Log   *zap.Logger
}

// New builds a Session. auth may be nil when accounts are unavailable.
func New(g *guest.Store, b *bests.Ranking, a auth.Service, log *zap.Logger) *Session {
	return &Session{Guest: g, Bests: b, Auth: a, Log: logging.OrNop(log)}
}

// Outcome describes what a recorded test changed.
type Outcome struct {
	Bests       []model.Result
	NewBest     bool
	Rank        int
	Unlocked    []achievements.ID
	GuestActive bool
}

// RecordTest stores a completed test: it is merged into personal bests and,
// in guest mode, appended to the guest history with any newly earned
// achievements.
func (s *Session) RecordTest(ctx context.Context, result model.Result) (Outcome, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}
	list, err := s.Bests.Record(ctx, &result)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to record personal best: %w", err)
	}
	out := Outcome{Bests: list}
	for i, r := range list {
		if r.ID == result.ID {
			out.NewBest = true
			out.Rank = i + 1
			break
		}
	}

	if !s.Guest.IsGuest() {
		return out, nil
	}
	out.GuestActive = true
	if err := s.Guest.UpdateGuestStats(ctx, result.WPM, result.Accuracy); err != nil {
		return out, fmt.Errorf("failed to update guest stats: %w", err)
	}
	profile, ok := s.Guest.Profile()
	if !ok {
		return out, nil
	}
	for _, id := range achievements.Evaluate(result, profile.TypingStats.Len()) {
		added, err := s.Guest.AddGuestAchievement(ctx, string(id))
		if err != nil {
			return out, fmt.Errorf("failed to unlock achievement %s: %w", id, err)
		}
		if added {
			out.Unlocked = append(out.Unlocked, id)
			s.Log.Info("achievement unlocked", zap.String("achievement", string(id)))
		}
	}
	return out, nil
}

// Preferences returns the guest preferences, or defaults outside guest mode.
func (s *Session) Preferences() model.Preferences {
	if p, ok := s.Guest.Profile(); ok {
		return p.Preferences
	}
	return model.DefaultPreferences()
}

// Identity describes who is using the app, for display.
func (s *Session) Identity() string {
	if s.Auth != nil {
		if sess, ok := s.Auth.CurrentSession(); ok {
			return sess.Email
		}
	}
	if p, ok := s.Guest.Profile(); ok {
		return "guest " + shortID(p.ID)
	}
	return "anonymous"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
