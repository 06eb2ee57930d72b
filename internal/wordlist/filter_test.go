package wordlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("EN")
	assert.True(t, filter("hello"))
	for _, word := range []string{"", "Hello", "résumé", "naïve", "don’t", "co-op"} {
		assert.False(t, filter(word), word)
	}
}

func TestFilterOtherLanguagesKeepsLetters(t *testing.T) {
	filter := FilterForLang("de")
	assert.True(t, filter("straße"))
	assert.True(t, filter("naïve"))
	assert.False(t, filter("co-op"))
	assert.False(t, filter("two words"))
}
