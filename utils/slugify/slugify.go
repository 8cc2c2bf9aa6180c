// Package slugify derives URL slugs from Vietnamese display names for
// taxonomy entries the providers ship without one.
package slugify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases name, strips diacritics (đ folds to d) and collapses
// everything that is not a letter or digit into single dashes. Unfoldable
// input degrades to whatever survives the filter; Make never fails.
func Make(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		folded = lowered
	}
	folded = strings.ReplaceAll(folded, "đ", "d")

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
