// Package generator builds typing test text.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Options controls text generation.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text returns opts.Words words drawn uniformly from words, joined by spaces.
// Each word may get a capital first letter and trailing punctuation.
func (g *Generator) Text(words []string, opts Options) string {
	if len(words) == 0 || opts.Words <= 0 {
		return ""
	}
	out := make([]string, opts.Words)
	for i := range out {
		out[i] = g.decorate(words[g.rnd.Intn(len(words))], opts)
	}
	return strings.Join(out, " ")
}

func (g *Generator) decorate(word string, opts Options) string {
	if opts.CapsPct > 0 && g.rnd.Float64() < opts.CapsPct {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
			word = string(runes)
		}
	}
	if opts.PunctPct > 0 && len(opts.PunctSet) > 0 && g.rnd.Float64() < opts.PunctPct {
		word += string(opts.PunctSet[g.rnd.Intn(len(opts.PunctSet))])
	}
	return word
}
