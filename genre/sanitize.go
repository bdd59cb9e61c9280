package genre

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	minTokenRunes = 3
	maxTokenRunes = 40
	maxTokens     = 5
)

// Sanitize turns a free-form model reply into at most five genre tokens.
// Only the first non-empty line is read and a leading "Label:" is dropped.
// Tokens must hold a letter and be 3 to 40 runes long.
func Sanitize(reply string) []string {
	line := ""
	for _, l := range strings.Split(reply, "\n") {
		if l = strings.TrimSpace(l); len(l) > 0 {
			line = l
			break
		}
	}

	if i := strings.Index(line, ":"); i >= 0 {
		line = line[i+1:]
	}

	fold := cases.Fold()
	seen := map[string]struct{}{}
	out := []string{}

	for _, tok := range strings.Split(line, ",") {
		tok = cleanToken(tok)

		n := utf8.RuneCountInString(tok)
		if n < minTokenRunes || n > maxTokenRunes || !hasLetter(tok) {
			continue
		}

		key := fold.String(tok)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, tok)
		if len(out) == maxTokens {
			break
		}
	}

	return out
}

func cleanToken(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimLeft(tok, "-*•· ")
	tok = strings.Trim(tok, "\"'`«»“”‘’ ")
	tok = strings.TrimRight(tok, ". ")
	return strings.TrimSpace(tok)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
