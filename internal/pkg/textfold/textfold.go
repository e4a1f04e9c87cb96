// Package textfold canonicalizes names for uniqueness comparison.
// Two association or commission names are considered equal when their
// folded forms match: NFD decomposition, combining marks stripped,
// lowercased, all whitespace removed.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the canonical form of a name.
func Fold(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		// transform only fails on malformed UTF-8; fall back to the raw input
		folded = name
	}
	folded = strings.ToLower(folded)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// Equal reports whether two names fold to the same canonical form.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
