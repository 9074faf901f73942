// Package intake checks and cleans raw symptom text before it is analyzed.
package intake

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinLength = 3
	MaxLength = 500
)

var (
	ErrEmpty    = errors.New("no symptoms provided")
	ErrTooShort = fmt.Errorf("input too short. Minimum %d characters required", MinLength)
	ErrTooLong  = fmt.Errorf("input too long. Maximum %d characters allowed", MaxLength)
	ErrUnsafe   = errors.New("invalid characters detected in input")
)

var unsafePatterns = compilePatterns([]string{
	`(?is)<script[^>]*>.*?</script>`,
	`(?i)javascript:`,
	`(?i)on\w+\s*=`,
	`(?i)<iframe`,
	`(?i)<object`,
	`(?i)<embed`,
	`(?i)document\.cookie`,
	`(?i)window\.location`,
	`(?i)eval\s*\(`,
	`(?i)expression\s*\(`,
})

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Validate returns the sanitized form of raw, or one of the package errors.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmpty
	}

	n := utf8.RuneCountInString(trimmed)
	if n < MinLength {
		return "", ErrTooShort
	}
	if n > MaxLength {
		return "", ErrTooLong
	}

	for _, p := range unsafePatterns {
		if p.MatchString(trimmed) {
			return "", fmt.Errorf("%w: matched %s", ErrUnsafe, p.String())
		}
	}
	return Sanitize(trimmed), nil
}

// Sanitize strips tags, collapses whitespace and escapes markup characters.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return escaper.Replace(s)
}

// Apostrophes stay as typed so phrases like "can't breathe" still match.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Message returns the user-facing text for a validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsafe):
		return "Invalid characters detected in input."
	case errors.Is(err, ErrEmpty), errors.Is(err, ErrTooShort), errors.Is(err, ErrTooLong):
		return strings.ToUpper(err.Error()[:1]) + err.Error()[1:] + "."
	default:
		return html.EscapeString(err.Error())
	}
}
