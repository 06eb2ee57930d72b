package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("guest-%d", n)
	}
}

func openTestStore(t *testing.T, storage store.Storage) *Store {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := Open(context.Background(), storage, WithClock(clock.now), WithIDFunc(sequentialIDs()))
	require.NoError(t, err)
	return s
}

func TestCreateGuestUserFromFreshStorage(t *testing.T) {
	s := openTestStore(t, store.NewMemory())
	assert.False(t, s.IsGuest())

	p, err := s.CreateGuestUser(context.Background())
	require.NoError(t, err)

	assert.True(t, s.IsGuest())
	assert.Equal(t, "guest-1", p.ID)
	assert.Empty(t, p.Achievements)
	assert.Equal(t, 0, p.TypingStats.Len())
	assert.Equal(t, model.DefaultPreferences(), p.Preferences)
}

func TestCreateGuestUserReplacesPriorProfile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	first, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuestStats(ctx, 70, 0.9))
	_, err = s.AddGuestAchievement(ctx, "first_test")
	require.NoError(t, err)
	dark := model.ThemeDark
	require.NoError(t, s.UpdateGuestPreferences(ctx, model.PreferencesPatch{Theme: &dark}))

	second, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.Equal(t, 0, second.TypingStats.Len())
	assert.Empty(t, second.Achievements)
	assert.Equal(t, model.ThemeSystem, second.Preferences.Theme)
}

func TestUpdateGuestStatsKeepsSequencesAligned(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpdateGuestStats(ctx, float64(40+i), 0.9))
		p, _ := s.Profile()
		st := p.TypingStats
		require.Len(t, st.WPM, i+1)
		require.Len(t, st.Accuracy, i+1)
		require.Len(t, st.Dates, i+1)
	}
}

func TestUpdateGuestStatsAppends(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuestStats(ctx, 50, 0.9))

	require.NoError(t, s.UpdateGuestStats(ctx, 60, 0.95))

	p, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, []float64{50, 60}, p.TypingStats.WPM)
	assert.Len(t, p.TypingStats.Accuracy, 2)
	assert.True(t, p.TypingStats.Dates[1].After(p.TypingStats.Dates[0]))
}

func TestMutationsWithoutProfileAreNoops(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	s := openTestStore(t, storage)

	require.NoError(t, s.UpdateGuestStats(ctx, 60, 1))
	off := false
	require.NoError(t, s.UpdateGuestPreferences(ctx, model.PreferencesPatch{SoundEnabled: &off}))
	added, err := s.AddGuestAchievement(ctx, "first_test")
	require.NoError(t, err)
	assert.False(t, added)

	assert.False(t, s.IsGuest())
	_, ok, err := storage.Get(ctx, store.KeyGuest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateGuestPreferencesMergesFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)

	off := false
	require.NoError(t, s.UpdateGuestPreferences(ctx, model.PreferencesPatch{SoundEnabled: &off}))
	light := model.ThemeLight
	require.NoError(t, s.UpdateGuestPreferences(ctx, model.PreferencesPatch{Theme: &light}))

	p, _ := s.Profile()
	assert.Equal(t, model.Preferences{
		Theme:             model.ThemeLight,
		SoundEnabled:      false,
		AnimationsEnabled: true,
	}, p.Preferences)

	bad := model.Theme("neon")
	assert.Error(t, s.UpdateGuestPreferences(ctx, model.PreferencesPatch{Theme: &bad}))
}

func TestAddGuestAchievementIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)

	added, err := s.AddGuestAchievement(ctx, "speed_60")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddGuestAchievement(ctx, "speed_60")
	require.NoError(t, err)
	assert.False(t, added)

	p, _ := s.Profile()
	assert.Equal(t, []string{"speed_60"}, p.Achievements)
}

func TestClearGuestDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	s := openTestStore(t, storage)
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ClearGuestData(ctx))
	require.NoError(t, s.ClearGuestData(ctx))

	assert.False(t, s.IsGuest())
	_, ok, err := storage.Get(ctx, store.KeyGuest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, store.NewMemory())
	_, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuestStats(ctx, 50, 1))

	p, _ := s.Profile()
	p.TypingStats.WPM[0] = 999

	again, _ := s.Profile()
	assert.Equal(t, 50.0, again.TypingStats.WPM[0])
}

func TestOpenReloadsPersistedProfile(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "keysprint.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	s := openTestStore(t, st)
	created, err := s.CreateGuestUser(ctx)
	require.NoError(t, err)
	require.NoError(t, s.UpdateGuestStats(ctx, 80, 0.97))

	reopened := openTestStore(t, st)
	p, ok := reopened.Profile()
	require.True(t, ok)
	assert.Equal(t, created.ID, p.ID)
	assert.Equal(t, []float64{80}, p.TypingStats.WPM)
}

func TestOpenDiscardsCorruptedRecord(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"not json":        "{oops",
		"array":           "[]",
		"future version":  `{"version":99,"profile":{"id":"x"}}`,
		"null profile":    `{"version":1,"profile":null}`,
		"missing id":      `{"version":1,"profile":{"createdAt":"2024-01-01T00:00:00Z"}}`,
		"length mismatch": `{"version":1,"profile":{"id":"x","typingStats":{"wpm":[1,2],"accuracy":[1],"dates":[]}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			storage := store.NewMemory()
			require.NoError(t, storage.Set(ctx, store.KeyGuest, raw))

			s := openTestStore(t, storage)

			assert.False(t, s.IsGuest())
			_, ok, err := storage.Get(ctx, store.KeyGuest)
			require.NoError(t, err)
			assert.False(t, ok, "corrupted record should be removed")
		})
	}
}

func TestOpenMigratesLegacyRecord(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	legacy := `{
		"id": "legacy-guest",
		"createdAt": "2023-05-01T10:00:00Z",
		"typingStats": {"wpm": [42], "accuracy": [0.91], "dates": ["2023-05-01T10:05:00Z"]},
		"achievements": ["first_test", "first_test"],
		"preferences": {"theme": "dark"}
	}`
	require.NoError(t, storage.Set(ctx, store.KeyGuest, legacy))

	s := openTestStore(t, storage)

	p, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "legacy-guest", p.ID)
	assert.Equal(t, []string{"first_test"}, p.Achievements)
	assert.Equal(t, model.ThemeDark, p.Preferences.Theme)
	assert.True(t, p.Preferences.SoundEnabled)

	raw, ok, err := storage.Get(ctx, store.KeyGuest)
	require.NoError(t, err)
	require.True(t, ok)
	var env struct {
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, schemaVersion, env.Version)
}
