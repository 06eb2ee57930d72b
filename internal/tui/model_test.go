package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/app"
	"github.com/verte-zerg/keysprint/internal/bests"
	"github.com/verte-zerg/keysprint/internal/generator"
	"github.com/verte-zerg/keysprint/internal/guest"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

func newTestModel(t *testing.T, prefs model.Preferences) (*Model, *app.Session) {
	t.Helper()
	storage := store.NewMemory()
	g, err := guest.Open(context.Background(), storage)
	require.NoError(t, err)
	sess := app.New(g, bests.New(storage), nil, nil)
	m := NewModel(Deps{
		Recorder: sess,
		Bests:    sess.Bests,
		Gen:      generator.NewSeeded(1),
		Words:    []string{"go"},
		Config:   model.TestConfig{Lang: "en", Words: 2},
		Prefs:    prefs,
		Identity: "anonymous",
	})
	return m, sess
}

func quiet() model.Preferences {
	return model.Preferences{Theme: model.ThemeDark}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _ := newTestModel(t, quiet())
	m.target = []rune("abcd")
	m.input = []rune("ab")
	m.last = &model.Result{WPM: 72.4, Accuracy: 0.978}
	m.bestWPM = 80.3

	out := m.renderFooter()

	for _, want := range []string{"Progress 50%", "Last 72.4 WPM", "97.8%", "Best 80.3 WPM", "anonymous"} {
		assert.Contains(t, out, want)
	}
}

func TestTypingTextRecordsResult(t *testing.T) {
	m, sess := newTestModel(t, quiet())
	require.Equal(t, "go go", string(m.target))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("go")})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gx")})

	require.NotNil(t, m.last)
	assert.Equal(t, 3, m.last.Correct)
	assert.Equal(t, 1, m.last.Incorrect)
	assert.Empty(t, m.input, "a new text starts after completion")
	assert.Equal(t, "Personal best #1", m.notice)

	list, err := sess.Bests.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "en", list[0].Lang)
	assert.Len(t, m.bestsTable.Rows(), 1)
}

func TestBackspaceAndEscape(t *testing.T) {
	m, _ := newTestModel(t, quiet())
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.input)
	assert.True(t, m.started)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.input)
	assert.False(t, m.started)
}

func TestTabTogglesBestsPanel(t *testing.T) {
	m, sess := newTestModel(t, quiet())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.NotContains(t, m.View(), "Personal bests")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, sess.Bests.Visible())
	assert.Contains(t, m.View(), "Personal bests")
}

func TestSoundPreferenceRingsOnMistake(t *testing.T) {
	m, _ := newTestModel(t, model.Preferences{Theme: model.ThemeDark, SoundEnabled: true})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.NotNil(t, cmd)

	silent, _ := newTestModel(t, quiet())
	_, cmd = silent.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

func TestAnimationsDriveTicker(t *testing.T) {
	m, _ := newTestModel(t, model.Preferences{Theme: model.ThemeDark, AnimationsEnabled: true})
	assert.NotNil(t, m.Init())
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.True(t, strings.Contains(m.renderFooter(), "WPM"))

	still, _ := newTestModel(t, quiet())
	assert.Nil(t, still.Init())
}
