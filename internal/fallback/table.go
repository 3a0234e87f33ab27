// Package fallback provides the static mood-to-quote table used when no
// generation provider is configured.
package fallback

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// defaultMaxDistance is the edit-distance budget for near-key matching.
// One edit tolerates a missing diacritic or a typo without ever pulling
// an unrelated mood onto a known quote.
const defaultMaxDistance = 1

// Table is a fixed mapping from normalized mood keys to pre-authored
// quotes, plus a default entry for unknown keys. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	quotes      map[string]string
	defaultText string
	maxDistance int
}

// NewTable returns the built-in table shipped with the service.
func NewTable() *Table {
	return NewTableWith(map[string]string{
		"vui vẻ":   "Hạnh phúc không phải là đích đến mà là cách chúng ta di chuyển.",
		"buồn":     "Sau cơn mưa trời lại sáng, sau đau khổ sẽ có hạnh phúc.",
		"động lực": "Thành công bắt đầu từ việc tin tưởng vào chính mình.",
		"lãng mạn": "Tình yêu thật sự là khi hai trái tim cùng nhìn về một hướng.",
		"sâu lắng": "Cuộc sống không đo bằng số lần thở mà bằng những khoảnh khắc nghẹt thở.",
	}, "Hãy sống như hôm nay là ngày cuối cùng và học hỏi như bạn sẽ sống mãi mãi.")
}

// NewTableWith builds a table from explicit entries and a default quote.
// Keys are NFC-normalized so lookups against normalized mood keys match.
func NewTableWith(quotes map[string]string, defaultText string) *Table {
	entries := make(map[string]string, len(quotes))
	for k, v := range quotes {
		entries[norm.NFC.String(k)] = v
	}
	return &Table{
		quotes:      entries,
		defaultText: defaultText,
		maxDistance: defaultMaxDistance,
	}
}

// Lookup returns the quote for a normalized mood key. Unknown keys fall
// through near-key matching to the default entry. Never fails.
func (t *Table) Lookup(key string) string {
	if q, ok := t.quotes[key]; ok {
		return q
	}
	if q, ok := t.nearest(key); ok {
		return q
	}
	return t.defaultText
}

// Default returns the default quote.
func (t *Table) Default() string {
	return t.defaultText
}

// nearest finds the entry whose key is within the edit-distance budget.
func (t *Table) nearest(key string) (string, bool) {
	best := t.maxDistance + 1
	var text string
	for k, q := range t.quotes {
		if d := levenshtein.ComputeDistance(key, k); d < best {
			best = d
			text = q
		}
	}
	return text, best <= t.maxDistance
}
