package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keysprint/internal/model"
)

// Line is one plotted series. Lo and Hi fix the vertical range; when they
// are equal the range is taken from the values.
type Line struct {
	Label  string
	Values []float64
	Lo, Hi float64
	Style  lipgloss.Style
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	chartGutter        = " │ "
	chartLabelWidth    = 5
)

// ChartWidthFor returns the plot width that fits totalWidth columns
// including the axis gutter.
func ChartWidthFor(totalWidth int) int {
	w := totalWidth - chartLabelWidth - len([]rune(chartGutter))
	return max(w, minChartWidth)
}

// RenderChart draws lines as a braille chart. Every line shares the canvas
// and has its own scale.
func RenderChart(w io.Writer, title string, lines []Line, width, height int) error {
	var drawn []Line
	for _, l := range lines {
		if len(l.Values) > 0 {
			drawn = append(drawn, l)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	width = max(width, minChartWidth)

	canvases := make([]canvas, len(drawn))
	for i, l := range drawn {
		lo, hi := l.Lo, l.Hi
		if lo == hi {
			lo, hi = bounds(l.Values)
		}
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		canvases[i] = newCanvas(width, height)
		canvases[i].plot(resample(l.Values, width), lo, hi)
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		fmt.Fprintf(&b, "%*s%s", chartLabelWidth, label, chartGutter)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, c := range canvases {
				if m := c.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := string(rune(0x2800 + int(mask)))
			if owner >= 0 {
				ch = drawn[owner].Style.Render(ch)
			}
			b.WriteString(ch)
		}
		b.WriteByte('\n')
	}
	legend := make([]string, len(drawn))
	for i, l := range drawn {
		lo, hi := bounds(l.Values)
		legend[i] = l.Style.Render(fmt.Sprintf("⣿ %s %.1f..%.1f", l.Label, lo, hi))
	}
	b.WriteString(strings.Repeat(" ", chartLabelWidth+len([]rune(chartGutter))))
	b.WriteString(strings.Join(legend, "  "))
	_, err := fmt.Fprintln(w, b.String())
	return err
}

// RenderGuestChart plots the guest WPM and accuracy history.
func RenderGuestChart(w io.Writer, p model.GuestProfile, totalWidth int, wpmStyle, accStyle lipgloss.Style) error {
	st := p.TypingStats
	if st.Len() == 0 {
		_, err := fmt.Fprintln(w, "No tests recorded yet.")
		return err
	}
	acc := make([]float64, len(st.Accuracy))
	for i, a := range st.Accuracy {
		acc[i] = a * 100
	}
	return RenderChart(w, fmt.Sprintf("Last %d tests", st.Len()), []Line{
		{Label: "WPM", Values: st.WPM, Style: wpmStyle},
		{Label: "Accuracy %", Values: acc, Lo: 0, Hi: 100, Style: accStyle},
	}, ChartWidthFor(totalWidth), defaultChartHeight)
}

// canvas is a grid of braille cells, each 2 dots wide and 4 dots tall.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return canvas{cells: cells}
}

func (c canvas) plot(values []float64, lo, hi float64) {
	dotsY := len(c.cells) * 4
	prevX, prevY := -1, -1
	for i, v := range values {
		pos := (v - lo) / (hi - lo)
		y := int(math.Round((1 - pos) * float64(dotsY-1)))
		y = min(max(y, 0), dotsY-1)
		x := i * 2
		if prevX < 0 {
			c.set(x, y)
		} else {
			line(prevX, prevY, x, y, c.set)
		}
		prevX, prevY = x, y
	}
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c canvas) set(x, y int) {
	row, col := y/4, x/2
	if x < 0 || y < 0 || row >= len(c.cells) || col >= len(c.cells[row]) {
		return
	}
	c.cells[row][col] |= dotBits[x%2][y%4]
}

// line walks a Bresenham line from (x0,y0) to (x1,y1).
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// resample stretches or averages values to exactly n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 0 || n == 0:
		return nil
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) > n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
