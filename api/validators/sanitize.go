package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims whitespace and caps the value at maxLen runes.
// Truncation counts runes, not bytes, so accented text is never split
// mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		runes := []rune(trimmed)
		return string(runes[:maxLen])
	}
	return trimmed
}
