package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks, turning "Situação" into "Situacao".
func StripAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// FoldUpper trims, strips accents, and upper-cases value using Portuguese
// casing rules.
func FoldUpper(value string) string {
	return cases.Upper(language.BrazilianPortuguese).String(StripAccents(strings.TrimSpace(value)))
}

// EqualFold compares two labels ignoring case, accents, and surrounding space.
func EqualFold(a, b string) bool {
	return FoldUpper(a) == FoldUpper(b)
}
