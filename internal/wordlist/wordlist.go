// Package wordlist loads word lists for typing tests.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words_en.txt
var embeddedEnglish string

// ErrEmpty is returned when a list has no usable words.
var ErrEmpty = errors.New("word list is empty")

// LoadWords reads one word per line from path, keeping words accepted by
// the language filter.
func LoadWords(path, lang string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return parse(file, FilterForLang(lang))
}

// Default returns the embedded English list.
func Default() []string {
	words, err := parse(strings.NewReader(embeddedEnglish), FilterForLang("en"))
	if err != nil {
		panic(fmt.Sprintf("embedded word list: %v", err))
	}
	return words
}

// Resolve loads the list at path, falling back to the embedded English list
// when the file does not exist. fellBack reports whether the fallback was used.
func Resolve(path, lang string) (words []string, fellBack bool, err error) {
	words, err = LoadWords(path, lang)
	if err == nil {
		return words, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), true, nil
	}
	return nil, false, err
}

func parse(r io.Reader, keep FilterFunc) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !keep(line) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}
