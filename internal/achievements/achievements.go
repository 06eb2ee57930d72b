// Package achievements defines unlockable achievements and their conditions.
package achievements

import (
	"sort"

	"github.com/verte-zerg/keysprint/internal/model"
)

// ID identifies an achievement. IDs are persisted in guest profiles.
type ID string

// Known achievements.
const (
	FirstTest  ID = "first_test"
	Speed40    ID = "speed_40"
	Speed60    ID = "speed_60"
	Speed80    ID = "speed_80"
	Speed100   ID = "speed_100"
	Flawless   ID = "flawless"
	Dedicated  ID = "dedicated"
	Marathoner ID = "marathoner"
)

// minFlawless is the shortest test that can earn Flawless.
const minFlawless = 20

// Achievement describes one unlockable achievement.
type Achievement struct {
	ID          ID
	Name        string
	Description string
}

var catalog = []Achievement{
	{ID: FirstTest, Name: "First Steps", Description: "Complete your first typing test"},
	{ID: Speed40, Name: "Warming Up", Description: "Reach 40 WPM"},
	{ID: Speed60, Name: "Quick Fingers", Description: "Reach 60 WPM"},
	{ID: Speed80, Name: "Speed Demon", Description: "Reach 80 WPM"},
	{ID: Speed100, Name: "Centurion", Description: "Reach 100 WPM"},
	{ID: Flawless, Name: "Flawless", Description: "Finish a test of 20+ characters with 100% accuracy"},
	{ID: Dedicated, Name: "Dedicated", Description: "Complete 10 tests"},
	{ID: Marathoner, Name: "Marathoner", Description: "Complete 50 tests"},
}

var speedThresholds = []struct {
	id  ID
	wpm float64
}{
	{Speed40, 40},
	{Speed60, 60},
	{Speed80, 80},
	{Speed100, 100},
}

// All returns the catalog in display order.
func All() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the achievement for id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if string(a.ID) == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Evaluate returns every achievement satisfied by result given the number of
// tests completed so far, including this one.
func Evaluate(result model.Result, completed int) []ID {
	var earned []ID
	if completed >= 1 {
		earned = append(earned, FirstTest)
	}
	for _, th := range speedThresholds {
		if result.WPM >= th.wpm {
			earned = append(earned, th.id)
		}
	}
	if result.Incorrect == 0 && result.Correct >= minFlawless {
		earned = append(earned, Flawless)
	}
	if completed >= 10 {
		earned = append(earned, Dedicated)
	}
	if completed >= 50 {
		earned = append(earned, Marathoner)
	}
	return earned
}

// Unlocked resolves stored ids into catalog entries in display order.
// Unknown ids are skipped.
func Unlocked(ids []string) []Achievement {
	order := make(map[ID]int, len(catalog))
	for i, a := range catalog {
		order[a.ID] = i
	}
	var out []Achievement
	for _, id := range ids {
		if a, ok := Lookup(id); ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return order[out[i].ID] < order[out[j].ID]
	})
	return out
}
