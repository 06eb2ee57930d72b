package wordlist

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns the word filter for a language. English keeps plain
// lowercase ASCII words; other languages keep words made of letters and marks.
func FilterForLang(lang string) FilterFunc {
	if strings.EqualFold(lang, "en") {
		return func(word string) bool {
			return word != "" && strings.IndexFunc(word, func(r rune) bool { return r < 'a' || r > 'z' }) < 0
		}
	}
	return func(word string) bool {
		return word != "" && strings.IndexFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
		}) < 0
	}
}
