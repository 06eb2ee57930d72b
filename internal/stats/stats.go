// Package stats contains typing metrics and text reports.
package stats

import (
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM, and accuracy for a test.
// A word is five correctly typed characters.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if durationMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(top)))
		idx = max(0, min(idx, top))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Summary aggregates a series of test results.
type Summary struct {
	Tests       int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
}

// Summarize aggregates parallel WPM and accuracy series.
func Summarize(wpms, accs []float64) Summary {
	s := Summary{Tests: len(wpms)}
	if s.Tests == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for i, w := range wpms {
		totalWPM += w
		s.BestWPM = math.Max(s.BestWPM, w)
		if i < len(accs) {
			totalAcc += accs[i]
		}
	}
	s.AvgWPM = totalWPM / float64(s.Tests)
	s.AvgAccuracy = totalAcc / float64(s.Tests)
	return s
}
