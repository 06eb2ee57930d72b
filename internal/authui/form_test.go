package authui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/auth"
	"github.com/verte-zerg/keysprint/internal/theme"
)

func typeText(f *Form, s string) {
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestFormSubmitsCredentials(t *testing.T) {
	var gotEmail, gotPassword string
	f := New("Sign in", "", theme.NewStyles(theme.Dark), func(_ context.Context, email, password string) (auth.Session, error) {
		gotEmail, gotPassword = email, password
		return auth.Session{Email: email}, nil
	})

	typeText(f, "a@b.co")
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(f, "hunter22")
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotNil(t, cmd)
	assert.Equal(t, "a@b.co", gotEmail)
	assert.Equal(t, "hunter22", gotPassword)
	s, ok := f.Session()
	require.True(t, ok)
	assert.Equal(t, "a@b.co", s.Email)
	assert.NotContains(t, f.View(), "hunter22")
}

func TestFormShowsErrorAndAllowsRetry(t *testing.T) {
	calls := 0
	f := New("Sign in", "a@b.co", theme.NewStyles(theme.Dark), func(context.Context, string, string) (auth.Session, error) {
		calls++
		if calls == 1 {
			return auth.Session{}, auth.ErrInvalidCredentials
		}
		return auth.Session{Email: "a@b.co"}, nil
	})

	typeText(f, "wrong")
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, f.View(), "Invalid email or password")
	_, ok := f.Session()
	assert.False(t, ok)

	typeText(f, "right1")
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, ok = f.Session()
	assert.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestFormEscapeAborts(t *testing.T) {
	f := New("Sign up", "", theme.NewStyles(theme.Light), func(context.Context, string, string) (auth.Session, error) {
		t.Fatal("submit should not run")
		return auth.Session{}, nil
	})
	f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, f.Aborted())
}
