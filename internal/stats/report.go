package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/keysprint/internal/achievements"
	"github.com/verte-zerg/keysprint/internal/model"
)

const (
	sparkWindow   = 5
	sparkMaxWidth = 60
)

// BestsRows returns the personal-bests table rows, rank first.
func BestsRows(list []model.Result) [][]string {
	rows := make([][]string, 0, len(list))
	for i, r := range list {
		date := "-"
		if !r.CompletedAt.IsZero() {
			date = r.CompletedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.1f", r.WPM),
			fmt.Sprintf("%.1f%%", r.Accuracy*100),
			fmt.Sprintf("%.1fs", float64(r.DurationMs)/1000),
			r.Lang,
			date,
		})
	}
	return rows
}

// BestsHeaders are the column titles matching BestsRows.
var BestsHeaders = []string{"#", "WPM", "Accuracy", "Time", "Lang", "Date"}

// RenderBests prints the personal-bests table.
func RenderBests(w io.Writer, list []model.Result) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No personal bests yet.")
		return err
	}
	lines := formatTable(BestsHeaders, BestsRows(list), map[int]bool{0: true, 1: true, 2: true, 3: true})
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderGuest prints the guest profile summary and WPM trend.
func RenderGuest(w io.Writer, p model.GuestProfile, width int) error {
	st := p.TypingStats
	sum := Summarize(st.WPM, st.Accuracy)
	lines := []string{
		"Guest " + p.ID,
		"Since: " + p.CreatedAt.Local().Format("2006-01-02"),
		fmt.Sprintf("Tests: %d", sum.Tests),
	}
	if sum.Tests > 0 {
		lines = append(lines,
			fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
			fmt.Sprintf("Best WPM: %.2f", sum.BestWPM),
			fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy*100),
		)
		values := MovingAverage(st.WPM, sparkWindow)
		limit := sparkMaxWidth
		if width > 0 && width-8 < limit {
			limit = max(width-8, 1)
		}
		if len(values) > limit {
			values = values[len(values)-limit:]
		}
		lines = append(lines, "Trend:  "+Sparkline(values))
	}
	lines = append(lines,
		fmt.Sprintf("Theme: %s  Sound: %s  Animations: %s",
			p.Preferences.Theme, onOff(p.Preferences.SoundEnabled), onOff(p.Preferences.AnimationsEnabled)),
		fmt.Sprintf("Achievements: %d/%d", len(achievements.Unlocked(p.Achievements)), len(achievements.All())),
	)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderAchievements prints the catalog with unlocked entries marked.
func RenderAchievements(w io.Writer, unlocked []string) error {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}
	rows := make([][]string, 0, len(achievements.All()))
	for _, a := range achievements.All() {
		mark := " "
		if have[string(a.ID)] {
			mark = "x"
		}
		rows = append(rows, []string{"[" + mark + "]", a.Name, a.Description})
	}
	lines := formatTable([]string{"", "Achievement", "Condition"}, rows, nil)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
