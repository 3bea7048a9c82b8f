// Package grading normalizes and scores submitted answers. Grading is
// deterministic: the same (expected, user) pair always yields the same
// result.
package grading

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/decyphr-net/practice-engine/internal/language"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// Grading method labels recorded on the attempt row
const (
	MethodExact      = "exact"
	MethodAccentFold = "accent_fold"
	MethodTypo       = "typo"
	MethodStructural = "structural"
	MethodOrdered    = "ordered_tokens"
	MethodNone       = "none"
)

// Result is the outcome of grading one answer
type Result struct {
	Score              int
	IsCorrect          bool
	NormalizedExpected string
	NormalizedUser     string
	Method             string
}

// Structural-match tuning. These are heuristics, not correctness
// requirements; adjust them as the corpus grows.
var (
	// minimum share of expected content tokens a long answer must cover
	structuralCoverage = 0.8
	// token length above which one edit of slack is allowed
	structuralFuzzyLen = 4
)

// GradeText grades a typed_translation or cloze answer
func GradeText(exerciseType models.ExerciseType, expected, user string) Result {
	normExpected := Normalize(expected)
	normUser := Normalize(user)
	res := Result{
		NormalizedExpected: normExpected,
		NormalizedUser:     normUser,
	}

	if normExpected != "" && normExpected == normUser {
		res.Score, res.IsCorrect, res.Method = 100, true, MethodExact
		return res
	}

	asciiExpected := NormalizeASCII(expected)
	asciiUser := NormalizeASCII(user)
	if asciiExpected != "" && asciiExpected == asciiUser {
		res.Score, res.IsCorrect, res.Method = 100, true, MethodAccentFold
		return res
	}

	if asciiUser != "" {
		distance := levenshtein.ComputeDistance(asciiExpected, asciiUser)
		if distance <= typoThreshold(len([]rune(asciiExpected))) {
			res.Score, res.IsCorrect, res.Method = 85, true, MethodTypo
			return res
		}
	}

	// Loose structural matching only applies to free-form translations into
	// English; cloze answers are single tokens and get no paraphrase slack.
	if exerciseType == models.ExerciseTypedTranslation && looksEnglish(normExpected) {
		if structuralMatch(asciiExpected, asciiUser) {
			res.Score, res.IsCorrect, res.Method = 80, true, MethodStructural
			return res
		}
	}

	res.Method = MethodNone
	return res
}

// GradeTokens grades a sentence_builder submission: binary, order matters.
// Punctuation-only tokens are ignored on both sides.
func GradeTokens(expected, submitted []string) Result {
	exp := normalizeTokenList(expected)
	sub := normalizeTokenList(submitted)
	res := Result{
		NormalizedExpected: strings.Join(exp, " "),
		NormalizedUser:     strings.Join(sub, " "),
		Method:             MethodOrdered,
	}

	if len(exp) == 0 || len(exp) != len(sub) {
		return res
	}
	for i := range exp {
		if exp[i] != sub[i] {
			return res
		}
	}
	res.Score, res.IsCorrect = 100, true
	return res
}

// typoThreshold returns the accepted edit distance for an expected answer of
// the given length
func typoThreshold(length int) int {
	switch {
	case length <= 5:
		return 0
	case length <= 12:
		return 1
	}
	return 2
}

func normalizeTokenList(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := NormalizeASCII(t)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// looksEnglish reports whether the expected answer reads as English, which
// is when paraphrase slack is meaningful
func looksEnglish(normalized string) bool {
	return language.DetectSide(normalized) == language.SideEnglish
}

// structuralMatch checks a loose paraphrase: function words stripped, simple
// plurals folded, then every expected content token must match a distinct
// user token. Short answers need full coverage, longer ones 80%.
func structuralMatch(expected, user string) bool {
	expTokens := contentTokens(expected)
	userTokens := contentTokens(user)
	if len(expTokens) == 0 || len(userTokens) == 0 {
		return false
	}

	used := make([]bool, len(userTokens))
	matched := 0
	for _, et := range expTokens {
		for i, ut := range userTokens {
			if used[i] {
				continue
			}
			if tokensLooselyEqual(et, ut) {
				used[i] = true
				matched++
				break
			}
		}
	}

	if len(expTokens) <= 3 {
		return matched == len(expTokens)
	}
	return float64(matched) >= structuralCoverage*float64(len(expTokens))
}

func contentTokens(s string) []string {
	var out []string
	for _, t := range strings.Fields(s) {
		if language.IsEnglishStopword(t) {
			continue
		}
		out = append(out, depluralize(t))
	}
	return out
}

// depluralize folds simple English plurals: "stories" -> "story",
// "books" -> "book". Naive on purpose.
func depluralize(t string) string {
	if strings.HasSuffix(t, "ies") && len(t) > 4 {
		return t[:len(t)-3] + "y"
	}
	if strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") && len(t) > 3 {
		return t[:len(t)-1]
	}
	return t
}

func tokensLooselyEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len([]rune(a)) > structuralFuzzyLen {
		return levenshtein.ComputeDistance(a, b) <= 1
	}
	return false
}
