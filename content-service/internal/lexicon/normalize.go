package lexicon

import (
	"strings"
	"unicode"
)

// NormalizeQuery lowercases s, trims it and collapses whitespace runs to a
// single space. The result is idempotent.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Words splits a query into lowercased whitespace-delimited words.
func Words(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// Slugify turns a title into a URL slug: lowercase letters and digits
// joined by single dashes.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
