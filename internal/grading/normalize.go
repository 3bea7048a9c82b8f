package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostropheFolder = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"ʼ", "'", // modifier letter apostrophe
	"`", "'",
	"–", "-", // en dash
	"—", "-", // em dash
)

// stripMarks removes combining marks after NFD decomposition, turning
// "leabhár" into "leabhar"
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds apostrophes and dashes, strips everything that isn't a
// letter, number, apostrophe or hyphen, collapses whitespace and lowercases.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = apostropheFolder.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '-':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeASCII applies Normalize and additionally strips diacritics, for
// the accent-insensitive comparison pass
func NormalizeASCII(s string) string {
	s = Normalize(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
