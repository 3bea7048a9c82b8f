// Package language provides lightweight heuristics for telling the target
// language (Irish) apart from English in a phrase pair. The heuristics are
// deliberately cheap: diacritic presence, closed stop-word lists, and
// token-level scoring. They only need to be good enough to resolve which
// side of a phrase pair is which.
package language

import (
	"strings"
	"unicode"
)

// Side identifies which language a piece of text looks like
type Side int

const (
	SideUnknown Side = iota
	SideEnglish
	SideTarget
)

func (s Side) String() string {
	switch s {
	case SideEnglish:
		return "english"
	case SideTarget:
		return "target"
	}
	return "unknown"
}

// englishStopwords is a closed list of high-frequency English function words
var englishStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "am": {}, "was": {},
	"were": {}, "be": {}, "to": {}, "of": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "it": {}, "i": {}, "you": {}, "he": {},
	"she": {}, "we": {}, "they": {}, "my": {}, "your": {}, "his": {},
	"her": {}, "our": {}, "their": {}, "this": {}, "that": {}, "with": {},
	"for": {}, "have": {}, "has": {}, "do": {}, "does": {}, "not": {},
	"what": {}, "how": {}, "there": {}, "here": {}, "good": {}, "hello": {},
}

// targetStopwords is a closed list of high-frequency Irish function words
// and particles
var targetStopwords = map[string]struct{}{
	"tá": {}, "an": {}, "na": {}, "is": {}, "agus": {}, "mé": {}, "tú": {},
	"sé": {}, "sí": {}, "muid": {}, "sibh": {}, "siad": {}, "go": {},
	"ar": {}, "le": {}, "ag": {}, "i": {}, "sa": {}, "do": {}, "mo": {},
	"a": {}, "ní": {}, "nach": {}, "bhí": {}, "beidh": {}, "seo": {},
	"sin": {}, "cad": {}, "conas": {}, "dia": {}, "maith": {}, "é": {},
	"í": {}, "iad": {}, "níl": {}, "aon": {}, "gach": {}, "de": {},
}

// targetDiacritics are the vowels carrying a fada
const targetDiacritics = "áéíóúÁÉÍÓÚ"

// Tokenize lowercases and splits text into word tokens, dropping anything
// that carries no letters or digits
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// HasDiacritics reports whether text contains any fada vowel
func HasDiacritics(text string) bool {
	return strings.ContainsAny(text, targetDiacritics)
}

// ScoreEnglish scores how English the tokens look, in [0, 1]
func ScoreEnglish(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := englishStopwords[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// ScoreTarget scores how Irish the tokens look, in [0, 1.5]. Diacritic
// presence is a strong signal English text never produces, so it counts
// beyond the stop-word ratio.
func ScoreTarget(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	diacritics := 0
	for _, t := range tokens {
		if _, ok := targetStopwords[t]; ok {
			hits++
		}
		if HasDiacritics(t) {
			diacritics++
		}
	}
	score := float64(hits) / float64(len(tokens))
	if diacritics > 0 {
		score += 0.5
	}
	return score
}

// DetectSide classifies text as English, target, or unknown when the two
// heuristics land too close together to trust
func DetectSide(text string) Side {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return SideUnknown
	}
	english := ScoreEnglish(tokens)
	target := ScoreTarget(tokens)
	const margin = 0.1
	switch {
	case target > english+margin:
		return SideTarget
	case english > target+margin:
		return SideEnglish
	}
	return SideUnknown
}

// IsEnglishStopword reports membership in the closed English function-word
// list. The grader uses it to strip function words before structural
// matching.
func IsEnglishStopword(token string) bool {
	_, ok := englishStopwords[strings.ToLower(token)]
	return ok
}
