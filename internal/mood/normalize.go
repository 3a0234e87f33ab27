// Package mood canonicalizes raw mood strings into cache keys.
package mood

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"moodquote/internal/domain"
)

// Normalize derives the cache key for a raw mood string: NFC-normalized,
// trimmed, and lower-cased with locale-insensitive rules. Returns
// domain.ErrEmptyMood when nothing remains after trimming.
func Normalize(raw string) (string, error) {
	key := norm.NFC.String(strings.TrimSpace(raw))
	key = cases.Lower(language.Und).String(key)
	if key == "" {
		return "", domain.ErrEmptyMood
	}
	return key, nil
}
