package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keysprint/internal/theme"
)

// wrongSpace is shown where a space was expected but something else was typed.
const wrongSpace = '•'

type cell struct {
	s       string
	width   int
	isSpace bool
}

// styleText renders target against input. cursor is the index of the next
// rune to type, or -1 when the text is complete.
func styleText(st theme.Styles, target, input []rune, cursor int) []cell {
	start, end := currentWord(target, cursor)
	out := make([]cell, len(target))
	for i, want := range target {
		shown := want
		var style = st.Pending
		switch {
		case i < len(input) && want == ' ' && input[i] != ' ':
			shown = wrongSpace
			style = st.Incorrect
		case i < len(input) && input[i] == want:
			style = st.Correct
		case i < len(input):
			style = st.Incorrect
		case want != ' ' && i >= start && i < end:
			style = st.CurrentWord
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out[i] = cell{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		}
	}
	return out
}

// currentWord returns the [start, end) range of the word the cursor is in or
// about to enter. A complete text highlights the first word.
func currentWord(target []rune, cursor int) (int, int) {
	if len(target) == 0 {
		return 0, 0
	}
	if cursor < 0 {
		cursor = 0
	}
	start := min(cursor, len(target)-1)
	for start < len(target) && target[start] == ' ' {
		start++
	}
	if start == len(target) {
		start = len(target) - 1
		for start > 0 && target[start] == ' ' {
			start--
		}
	}
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	end := start
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

// wrap lays cells out in lines of at most width columns, breaking after
// spaces. Words wider than a line are split.
func wrap(cells []cell, width int) string {
	if width <= 0 {
		return join(cells)
	}
	var lines []string
	var line []cell
	lineWidth := 0
	flush := func() {
		lines = append(lines, join(trimSpaces(line)))
		line = line[:0]
		lineWidth = 0
	}
	for _, word := range splitWords(cells) {
		ww := visibleWidth(word)
		if lineWidth > 0 && lineWidth+ww > width {
			flush()
		}
		for _, c := range word {
			if lineWidth+c.width > width && !c.isSpace && lineWidth > 0 {
				flush()
			}
			line = append(line, c)
			lineWidth += c.width
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}

// splitWords groups cells into words, each carrying its trailing spaces.
func splitWords(cells []cell) [][]cell {
	var words [][]cell
	start := 0
	for i := range cells {
		next := i + 1
		if cells[i].isSpace && (next == len(cells) || !cells[next].isSpace) {
			words = append(words, cells[start:next])
			start = next
		}
	}
	if start < len(cells) {
		words = append(words, cells[start:])
	}
	return words
}

// visibleWidth is the width of word without its trailing spaces.
func visibleWidth(word []cell) int {
	total := 0
	for _, c := range trimSpaces(word) {
		total += c.width
	}
	return total
}

func trimSpaces(line []cell) []cell {
	end := len(line)
	for end > 0 && line[end-1].isSpace {
		end--
	}
	return line[:end]
}

func join(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}
