package glossary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/screenlate/internal/cache"
)

// Entry is a source text with its fixed translation
type Entry struct {
	Source      string
	Translation string
}

// ReadFile reads a glossary file
func ReadFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses glossary lines of the form "source = translation".
// Blank lines, lines starting with '#' and lines missing either side
// of the '=' are skipped.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		source, translation, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		source = strings.TrimSpace(source)
		translation = strings.TrimSpace(translation)
		if source == "" || translation == "" {
			continue
		}

		entries = append(entries, Entry{Source: source, Translation: translation})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}
	return entries, nil
}

// Seed inserts entries into c as ready translations and returns how many
// were added. Keys that already have a translation keep it.
func Seed(c *cache.Cache, entries []Entry, sourceLang, targetLang string) int {
	added := 0
	for _, e := range entries {
		if c.Seed(cache.NewKey(e.Source, sourceLang, targetLang), e.Translation) {
			added++
		}
	}
	return added
}
