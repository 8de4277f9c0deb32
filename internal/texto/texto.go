// Package texto normalises free text for accent- and case-insensitive matching.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Plegar lowercases s, strips diacritics and collapses whitespace:
// "  Cortázar,  JULIO " → "cortazar, julio".
func Plegar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Terminos splits a query into folded search terms.
func Terminos(q string) []string {
	return strings.Fields(Plegar(q))
}
