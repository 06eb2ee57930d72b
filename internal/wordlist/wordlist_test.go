package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWordsFiltersByLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n\n  world  \nnaïve\nco-op\n"), 0o644))

	words, err := LoadWords(path, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, words)

	words, err = LoadWords(path, "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world", "naïve"}, words)
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))
	_, err := LoadWords(path, "en")
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestResolveFallsBackToEmbedded(t *testing.T) {
	words, fellBack, err := Resolve(filepath.Join(t.TempDir(), "missing.txt"), "en")
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, Default(), words)
	assert.Contains(t, words, "the")
}
