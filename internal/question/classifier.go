// Package question decides whether a transcribed utterance warrants an
// answer. The check is a deliberately simple substring heuristic, not a
// grammar-based classifier.
package question

import (
	"strings"
	"unicode/utf8"
)

// DefaultMarkers are interrogative words and phrases in English and
// Polish. Matching is by substring, so a marker occurring inside a
// longer word also matches; that is accepted behavior.
var DefaultMarkers = []string{
	"what", "why", "how", "when", "where", "who", "which",
	"can you", "could you", "would you",
	"jak", "dlaczego", "kiedy", "gdzie", "kto", "który", "czy",
	"możesz", "mógłbyś",
}

// DefaultMinLength is the minimum text length considered classifiable.
const DefaultMinLength = 8

// Classifier detects questions in transcript text. It is stateless and
// safe for concurrent use.
type Classifier struct {
	markers   []string
	minLength int
}

// New creates a classifier. Nil markers or a non-positive minLength
// fall back to the defaults.
func New(markers []string, minLength int) *Classifier {
	if markers == nil {
		markers = DefaultMarkers
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Classifier{markers: markers, minLength: minLength}
}

// IsQuestion reports whether text appears to be a question. Text below
// the minimum length is never a question; otherwise the lower-cased
// text is matched against every marker. Length counts characters, not
// bytes, so multibyte Polish text is measured the same as ASCII.
func (c *Classifier) IsQuestion(text string) bool {
	if utf8.RuneCountInString(text) < c.minLength {
		return false
	}

	lowered := strings.ToLower(text)
	for _, marker := range c.markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// MinLength returns the configured minimum classifiable length.
func (c *Classifier) MinLength() int {
	return c.minLength
}
