package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Patterns for personal data that may sit inside raw input lines.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), // e-mail addresses
	regexp.MustCompile(`\+?\d[\d -]{7,}\d`),                               // phone-like digit runs
}

// RedactedValue is the replacement for masked values.
const RedactedValue = "[REDACTED]"

// PreviewLength is the number of runes Preview keeps.
const PreviewLength = 120

// Redact masks e-mail addresses and long digit runs.
func Redact(s string) string {
	for _, pattern := range piiPatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// Preview returns a redacted, single-line, truncated copy of a raw input
// line suitable for a log field.
func Preview(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	if utf8.RuneCountInString(line) > PreviewLength {
		runes := []rune(line)
		line = string(runes[:PreviewLength]) + "..."
	}
	return Redact(line)
}
