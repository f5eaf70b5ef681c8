// Package arabic provides the text normalization used when comparing an
// expected ayah token against a transcribed word. Harakat (fatha, damma,
// kasra, sukun, shadda, tanwin) are combining marks and are stripped so
// that "بِسْمِ" and "بسم" compare equal.
package arabic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize strips diacritics and tatweel from s and trims surrounding
// whitespace. Input that fails to transform is returned trimmed as-is.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		if r == tatweel {
			return -1
		}
		return r
	}, out)
	return strings.TrimSpace(out)
}

// Tokenize splits target text into the expected token sequence the
// alignment walks over. Whitespace-separated, empty tokens dropped.
func Tokenize(s string) []string {
	return strings.Fields(s)
}
