// Package authui provides the email and password form used for sign-in and sign-up.
package authui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keysprint/internal/auth"
	"github.com/verte-zerg/keysprint/internal/theme"
)

// SubmitFunc performs the auth call for the entered credentials.
type SubmitFunc func(ctx context.Context, email, password string) (auth.Session, error)

const (
	fieldEmail = iota
	fieldPassword
)

// Form is a two-field credentials form. Errors from submit are shown
// inline and the user may edit and submit again.
type Form struct {
	title  string
	submit SubmitFunc
	styles theme.Styles

	inputs  []textinput.Model
	focus   int
	errMsg  string
	session *auth.Session
	aborted bool
}

// New builds a form. email pre-fills the email field.
func New(title, email string, styles theme.Styles, submit SubmitFunc) *Form {
	emailInput := textinput.New()
	emailInput.Prompt = "Email    "
	emailInput.Placeholder = "you@example.com"
	emailInput.SetValue(email)

	pwInput := textinput.New()
	pwInput.Prompt = "Password "
	pwInput.EchoMode = textinput.EchoPassword
	pwInput.EchoCharacter = '•'

	f := &Form{
		title:  title,
		submit: submit,
		styles: styles,
		inputs: []textinput.Model{emailInput, pwInput},
	}
	if email != "" {
		f.focus = fieldPassword
	}
	f.inputs[f.focus].Focus()
	return f
}

// Session returns the session created by a successful submit.
func (f *Form) Session() (auth.Session, bool) {
	if f.session == nil {
		return auth.Session{}, false
	}
	return *f.session, true
}

// Aborted reports whether the user left without signing in.
func (f *Form) Aborted() bool {
	return f.aborted
}

// Init implements tea.Model.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, f.updateInput(msg)
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		f.aborted = true
		return f, tea.Quit
	case tea.KeyTab, tea.KeyDown, tea.KeyShiftTab, tea.KeyUp:
		return f, f.setFocus(1 - f.focus)
	case tea.KeyEnter:
		if f.focus == fieldEmail {
			return f, f.setFocus(fieldPassword)
		}
		return f, f.trySubmit()
	}
	return f, f.updateInput(msg)
}

func (f *Form) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *Form) setFocus(idx int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = idx
	return f.inputs[f.focus].Focus()
}

func (f *Form) trySubmit() tea.Cmd {
	email := strings.TrimSpace(f.inputs[fieldEmail].Value())
	password := f.inputs[fieldPassword].Value()
	s, err := f.submit(context.Background(), email, password)
	if err != nil {
		f.errMsg = auth.UserMessage(err)
		f.inputs[fieldPassword].SetValue("")
		return nil
	}
	f.session = &s
	return tea.Quit
}

// View implements tea.Model.
func (f *Form) View() string {
	lines := []string{
		f.styles.Title.Render(f.title),
		"",
		f.inputs[fieldEmail].View(),
		f.inputs[fieldPassword].View(),
		"",
	}
	if f.errMsg != "" {
		lines = append(lines, f.styles.Error.Render(f.errMsg), "")
	}
	lines = append(lines, f.styles.Footer.Render("enter submit · tab switch field · esc cancel"))
	return f.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
