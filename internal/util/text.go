package util

import (
	"regexp"
	"strings"
)

var (
	reLineBreaks = regexp.MustCompile(`[\r\n]+`)
	reDisallowed = regexp.MustCompile(`[^A-Za-z0-9\s\-,\.;:()/%]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reWord       = regexp.MustCompile(`[a-z0-9]+`)
)

// CleanText normalizes free-form dataset text: line breaks and characters
// outside the allowed set become spaces, runs of whitespace collapse to one.
func CleanText(value string) string {
	if value == "" {
		return ""
	}
	s := reLineBreaks.ReplaceAllString(value, " ")
	s = reDisallowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize lowercases the input and splits it into alphanumeric word tokens.
func Tokenize(value string) []string {
	return reWord.FindAllString(strings.ToLower(value), -1)
}

// DedupeTokens removes duplicate and empty tokens while preserving the order
// of first occurrence.
func DedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SanitizePostgresText strips invalid UTF-8 sequences and NUL bytes, which
// Postgres text columns reject.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
