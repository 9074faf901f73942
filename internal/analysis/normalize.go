package analysis

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Normalize lower-cases text and splits it into word tokens, dropping any
// token isStop reports as a stop-word. Matching works on the lower-cased text;
// the tokens are informational.
func Normalize(text string, isStop func(string) bool) (string, []string) {
	lower := strings.ToLower(text)
	words := wordPattern.FindAllString(lower, -1)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if isStop != nil && isStop(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return lower, tokens
}
