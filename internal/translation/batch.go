package translation

import (
	"fmt"
	"strconv"
	"strings"
)

// compact drops blank texts and remembers where the rest came from
func compact(texts []string) (indices []int, nonEmpty []string) {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		indices = append(indices, i)
		nonEmpty = append(nonEmpty, t)
	}
	return indices, nonEmpty
}

// expand places results back at their original positions
func expand(n int, indices []int, results []string) []string {
	out := make([]string, n)
	for i, idx := range indices {
		if i < len(results) {
			out[idx] = results[i]
		}
	}
	return out
}

// numberLines renders texts as "1. text" lines
func numberLines(texts []string) string {
	lines := make([]string, len(texts))
	for i, t := range texts {
		lines[i] = fmt.Sprintf("%d. %s", i+1, strings.ReplaceAll(t, "\n", " "))
	}
	return strings.Join(lines, "\n")
}

// parseNumbered extracts "N. text" (or "N) text") lines from an LLM answer.
// Numbers outside 1..n and unnumbered lines are ignored.
func parseNumbered(raw string, n int) []string {
	out := make([]string, n)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sep := strings.IndexAny(line, ".)")
		if sep <= 0 {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(line[:sep]))
		if err != nil || num < 1 || num > n {
			continue
		}
		out[num-1] = strings.TrimSpace(line[sep+1:])
	}
	return out
}

// batchPrompt is the instruction shared by the LLM engines
func batchPrompt(texts []string, sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"Translate each numbered line from %s to %s. Output ONLY the translations, one per line, keeping the same numbering.\n\n%s",
		languageName(sourceLang), languageName(targetLang), numberLines(texts))
}

// singlePrompt asks for one translation with no commentary
func singlePrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"Translate the following %s text to %s. Respond with only the %s translation, nothing else.\n\n%s",
		languageName(sourceLang), languageName(targetLang), languageName(targetLang), text)
}
