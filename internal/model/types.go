// Package model defines shared data structures.
package model

import "time"

// Theme selects the color palette.
type Theme string

// Supported themes.
const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// TestConfig defines typing test settings.
type TestConfig struct {
	Lang     string
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet string
}

// Result captures a completed typing test.
type Result struct {
	ID          string    `json:"id"`
	WPM         float64   `json:"wpm"`
	CPM         float64   `json:"cpm"`
	Accuracy    float64   `json:"accuracy"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	DurationMs  int64     `json:"durationMs"`
	Words       int       `json:"words"`
	Lang        string    `json:"lang"`
	CompletedAt time.Time `json:"completedAt"`
}

// TypingStats holds per-test history as parallel sequences.
// All three slices always have the same length.
type TypingStats struct {
	WPM      []float64   `json:"wpm"`
	Accuracy []float64   `json:"accuracy"`
	Dates    []time.Time `json:"dates"`
}

// Len returns the number of recorded tests.
func (s TypingStats) Len() int {
	return len(s.WPM)
}

// Preferences holds guest UI preferences.
type Preferences struct {
	Theme             Theme `json:"theme"`
	SoundEnabled      bool  `json:"soundEnabled"`
	AnimationsEnabled bool  `json:"animationsEnabled"`
}

// DefaultPreferences returns the preferences of a fresh guest.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:             ThemeSystem,
		SoundEnabled:      true,
		AnimationsEnabled: true,
	}
}

// PreferencesPatch is a partial preferences update. Nil fields are left unchanged.
type PreferencesPatch struct {
	Theme             *Theme
	SoundEnabled      *bool
	AnimationsEnabled *bool
}

// Apply merges the patch into p.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.SoundEnabled != nil {
		prefs.SoundEnabled = *p.SoundEnabled
	}
	if p.AnimationsEnabled != nil {
		prefs.AnimationsEnabled = *p.AnimationsEnabled
	}
	return prefs
}

// GuestProfile is the locally stored identity used in guest mode.
type GuestProfile struct {
	ID           string      `json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	TypingStats  TypingStats `json:"typingStats"`
	Achievements []string    `json:"achievements"`
	Preferences  Preferences `json:"preferences"`
}

// Clone returns a deep copy of the profile.
func (p GuestProfile) Clone() GuestProfile {
	out := p
	out.TypingStats = TypingStats{
		WPM:      cloneSlice(p.TypingStats.WPM),
		Accuracy: cloneSlice(p.TypingStats.Accuracy),
		Dates:    cloneSlice(p.TypingStats.Dates),
	}
	out.Achievements = cloneSlice(p.Achievements)
	return out
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// HasAchievement reports whether the profile unlocked id.
func (p GuestProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}
