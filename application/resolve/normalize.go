package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeExact lowercases a query and collapses punctuation, dashes and
// whitespace runs into single spaces. This is the first search pass.
func NormalizeExact(q string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(q) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}

// NormalizeFuzzy applies the exact pass and then strips combining marks after
// NFD decomposition, so accented and plain spellings compare equal.
func NormalizeFuzzy(q string) string {
	exact := NormalizeExact(q)
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, exact)
	if err != nil {
		return exact
	}
	return out
}
