// Package tui provides the Bubble Tea typing test page.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/keysprint/internal/achievements"
	"github.com/verte-zerg/keysprint/internal/app"
	"github.com/verte-zerg/keysprint/internal/bests"
	"github.com/verte-zerg/keysprint/internal/generator"
	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/stats"
	"github.com/verte-zerg/keysprint/internal/theme"
)

const tickInterval = 250 * time.Millisecond

// Recorder stores completed tests.
type Recorder interface {
	RecordTest(ctx context.Context, result model.Result) (app.Outcome, error)
}

// Deps are the collaborators of the typing page.
type Deps struct {
	Recorder Recorder
	Bests    *bests.Ranking
	Gen      *generator.Generator
	Words    []string
	Config   model.TestConfig
	Prefs    model.Preferences
	Identity string
	Log      *zap.Logger
}

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	deps   Deps
	styles theme.Styles
	log    *zap.Logger

	width  int
	height int

	target []rune
	input  []rune

	started   bool
	startedAt time.Time
	correct   int
	incorrect int

	liveWPM float64
	last    *model.Result
	bestWPM float64
	notice  string

	bestsTable table.Model
}

// NewModel constructs a typing page model.
func NewModel(deps Deps) *Model {
	m := &Model{
		deps:   deps,
		styles: theme.NewStyles(theme.Resolve(deps.Prefs.Theme)),
		log:    logging.OrNop(deps.Log),
	}
	m.bestsTable = table.New(
		table.WithColumns(bestsColumns()),
		table.WithHeight(bests.MaxEntries+1),
	)
	m.refreshBests()
	m.reset()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.deps.Prefs.AnimationsEnabled {
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.started {
			m.liveWPM, _, _ = stats.SessionMetrics(m.correct, m.incorrect, time.Since(m.startedAt).Milliseconds())
		}
		return m, tick()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.reset()
			return m, nil
		case tea.KeyTab:
			m.deps.Bests.ToggleVisible()
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		case tea.KeySpace:
			return m, m.typeRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.typeRunes(msg.Runes)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.target) == 0 {
		return ""
	}
	cursor := -1
	if len(m.input) < len(m.target) {
		cursor = len(m.input)
	}
	cells := styleText(m.styles, m.target, m.input, cursor)
	if m.width == 0 || m.height == 0 {
		return join(cells)
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrap(cells, contentWidth))
	if m.deps.Bests.Visible() {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", m.renderBests())
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) typeRunes(runes []rune) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range runes {
		if len(m.input) >= len(m.target) {
			break
		}
		if !m.started {
			m.started = true
			m.startedAt = time.Now()
		}
		want := m.target[len(m.input)]
		m.input = append(m.input, r)
		if want != ' ' {
			if r == want {
				m.correct++
			} else {
				m.incorrect++
			}
		}
		if r != want && m.deps.Prefs.SoundEnabled {
			cmds = append(cmds, bell)
		}
		if len(m.input) == len(m.target) {
			m.finish()
			m.reset()
			break
		}
	}
	return tea.Batch(cmds...)
}

func bell() tea.Msg {
	_, _ = fmt.Fprint(os.Stderr, "\a")
	return nil
}

func (m *Model) reset() {
	m.input = nil
	m.started = false
	m.startedAt = time.Time{}
	m.correct = 0
	m.incorrect = 0
	m.liveWPM = 0
	cfg := m.deps.Config
	text := m.deps.Gen.Text(m.deps.Words, generator.Options{
		Words:    cfg.Words,
		CapsPct:  cfg.CapsPct,
		PunctPct: cfg.PunctPct,
		PunctSet: []rune(cfg.PunctSet),
	})
	m.target = []rune(text)
}

func (m *Model) finish() {
	if !m.started {
		return
	}
	ended := time.Now()
	durationMs := ended.Sub(m.startedAt).Milliseconds()
	wpm, cpm, acc := stats.SessionMetrics(m.correct, m.incorrect, durationMs)
	result := model.Result{
		WPM:         wpm,
		CPM:         cpm,
		Accuracy:    acc,
		Correct:     m.correct,
		Incorrect:   m.incorrect,
		DurationMs:  durationMs,
		Words:       m.deps.Config.Words,
		Lang:        m.deps.Config.Lang,
		CompletedAt: ended,
	}
	m.last = &result
	out, err := m.deps.Recorder.RecordTest(context.Background(), result)
	if err != nil {
		m.log.Error("failed to record test", zap.Error(err))
		m.notice = "could not save result"
		return
	}
	m.notice = outcomeNotice(out)
	m.setBests(out.Bests)
}

func outcomeNotice(out app.Outcome) string {
	var parts []string
	if out.NewBest {
		parts = append(parts, fmt.Sprintf("Personal best #%d", out.Rank))
	}
	for _, id := range out.Unlocked {
		if a, ok := achievements.Lookup(string(id)); ok {
			parts = append(parts, "Unlocked: "+a.Name)
		}
	}
	return strings.Join(parts, " · ")
}

func (m *Model) refreshBests() {
	list, err := m.deps.Bests.List(context.Background())
	if err != nil {
		m.log.Error("failed to load personal bests", zap.Error(err))
		return
	}
	m.setBests(list)
}

func (m *Model) setBests(list []model.Result) {
	rows := stats.BestsRows(list)
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}
	m.bestsTable.SetRows(tableRows)
	m.bestWPM = 0
	if len(list) > 0 {
		m.bestWPM = list[0].WPM
	}
}

func bestsColumns() []table.Column {
	widths := []int{3, 7, 9, 8, 5, 17}
	cols := make([]table.Column, len(stats.BestsHeaders))
	for i, h := range stats.BestsHeaders {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	return cols
}

func (m *Model) renderBests() string {
	title := m.styles.Title.Render("Personal bests")
	if len(m.bestsTable.Rows()) == 0 {
		return m.styles.Panel.Render(title + "\n" + m.styles.Footer.Render("No personal bests yet."))
	}
	return m.styles.Panel.Render(title + "\n" + m.bestsTable.View())
}

func (m *Model) renderFooter() string {
	if len(m.target) == 0 {
		return ""
	}
	progress := len(m.input) * 100 / len(m.target)
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.started && m.deps.Prefs.AnimationsEnabled {
		segments = append(segments, fmt.Sprintf("Now %.0f WPM", m.liveWPM))
	}
	if m.last != nil {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.last.WPM, m.last.Accuracy*100))
	}
	if m.bestWPM > 0 {
		segments = append(segments, fmt.Sprintf("Best %.1f WPM", m.bestWPM))
	}
	if m.deps.Identity != "" {
		segments = append(segments, m.deps.Identity)
	}
	footer := m.styles.Footer.Render(strings.Join(segments, "  "))
	if m.notice != "" {
		footer += "  " + m.styles.Title.Render(m.notice)
	}
	return footer
}
