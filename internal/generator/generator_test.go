package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextWordCountAndSource(t *testing.T) {
	g := NewSeeded(1)
	words := []string{"alpha", "beta", "gamma"}

	text := g.Text(words, Options{Words: 12})

	parts := strings.Split(text, " ")
	assert.Len(t, parts, 12)
	for _, p := range parts {
		assert.Contains(t, words, p)
	}
}

func TestTextAlwaysDecorates(t *testing.T) {
	g := NewSeeded(2)
	text := g.Text([]string{"word"}, Options{Words: 5, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	assert.Equal(t, "Word! Word! Word! Word! Word!", text)
}

func TestTextEmptyInputs(t *testing.T) {
	g := NewSeeded(3)
	assert.Equal(t, "", g.Text(nil, Options{Words: 3}))
	assert.Equal(t, "", g.Text([]string{"a"}, Options{}))
}

func TestSeededIsDeterministic(t *testing.T) {
	words := []string{"a", "b", "c", "d", "e"}
	opts := Options{Words: 20, CapsPct: 0.5, PunctPct: 0.5, PunctSet: []rune(".,")}
	assert.Equal(t, NewSeeded(9).Text(words, opts), NewSeeded(9).Text(words, opts))
}
