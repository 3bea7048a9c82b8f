// Package exercise turns language-pair phrases into practice exercises.
// Not every phrase can back every exercise shape; unbuildable combinations
// are an expected outcome that callers test for with errors.Is, not a fault.
package exercise

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/decyphr-net/practice-engine/internal/grading"
	"github.com/decyphr-net/practice-engine/internal/language"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// ErrNotConstructible marks a phrase/type combination that cannot yield an
// exercise. Callers skip the phrase rather than failing the request.
var ErrNotConstructible = errors.New("exercise not constructible")

// NotConstructibleError carries the reason a phrase was rejected
type NotConstructibleError struct {
	PhraseID int64
	Type     models.ExerciseType
	Reason   string
}

func (e *NotConstructibleError) Error() string {
	return fmt.Sprintf("exercise not constructible for phrase %d (%s): %s", e.PhraseID, e.Type, e.Reason)
}

func (e *NotConstructibleError) Unwrap() error {
	return ErrNotConstructible
}

func reject(phraseID int64, t models.ExerciseType, reason string) error {
	return &NotConstructibleError{PhraseID: phraseID, Type: t, Reason: reason}
}

const clozeBlank = "_____"

// Builder constructs exercises from phrases
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a builder with a time-seeded shuffle source
func NewBuilder() *Builder {
	return &Builder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewBuilderWithSeed creates a builder with a fixed shuffle source, for tests
func NewBuilderWithSeed(seed int64) *Builder {
	return &Builder{rng: rand.New(rand.NewSource(seed))}
}

// Build constructs the requested exercise shape from a phrase, or returns an
// error wrapping ErrNotConstructible
func (b *Builder) Build(phrase models.Phrase, exerciseType models.ExerciseType) (*models.Exercise, error) {
	p, err := resolvePair(phrase)
	if err != nil {
		return nil, err
	}

	switch exerciseType {
	case models.ExerciseTypedTranslation:
		return b.buildTypedTranslation(phrase, p)
	case models.ExerciseSentenceBuilder:
		return b.buildSentenceBuilder(phrase, p)
	case models.ExerciseCloze:
		return b.buildCloze(phrase, p)
	}
	return nil, reject(phrase.ID, exerciseType, "unknown exercise type")
}

// resolvedPair is a phrase with its sides identified
type resolvedPair struct {
	targetText string
	sourceText string
	// token metadata, only when it describes the target side
	targetTokens []models.PhraseToken
}

// resolvePair decides which side of the phrase is the target language. The
// phrase is rejected when the sides normalize to the same text or the
// heuristics cannot separate them.
func resolvePair(phrase models.Phrase) (*resolvedPair, error) {
	normText := grading.Normalize(phrase.Text)
	normTranslation := grading.Normalize(phrase.Translation)
	if normText == "" || normTranslation == "" {
		return nil, reject(phrase.ID, "", "empty side")
	}
	if normText == normTranslation {
		return nil, reject(phrase.ID, "", "sides are identical after normalization")
	}

	textTokens := language.Tokenize(phrase.Text)
	translationTokens := language.Tokenize(phrase.Translation)
	textScore := language.ScoreTarget(textTokens) - language.ScoreEnglish(textTokens)
	translationScore := language.ScoreTarget(translationTokens) - language.ScoreEnglish(translationTokens)

	const margin = 0.1
	switch {
	case textScore > translationScore+margin:
		return &resolvedPair{
			targetText:   phrase.Text,
			sourceText:   phrase.Translation,
			targetTokens: phrase.Tokens,
		}, nil
	case translationScore > textScore+margin:
		// Token metadata describes the text side, not the translation
		return &resolvedPair{
			targetText: phrase.Translation,
			sourceText: phrase.Text,
		}, nil
	}
	return nil, reject(phrase.ID, "", "ambiguous language pair")
}

func (b *Builder) buildTypedTranslation(phrase models.Phrase, p *resolvedPair) (*models.Exercise, error) {
	return &models.Exercise{
		ExerciseID:     uuid.NewString(),
		PhraseID:       phrase.ID,
		Type:           models.ExerciseTypedTranslation,
		Prompt:         p.sourceText,
		ExpectedAnswer: p.targetText,
	}, nil
}

func (b *Builder) buildSentenceBuilder(phrase models.Phrase, p *resolvedPair) (*models.Exercise, error) {
	canonical := canonicalTokens(p)
	if len(canonical) < 1 {
		return nil, reject(phrase.ID, models.ExerciseSentenceBuilder, "no usable tokens")
	}

	shuffled := make([]string, len(canonical))
	copy(shuffled, canonical)
	// Fisher-Yates
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return &models.Exercise{
		ExerciseID:     uuid.NewString(),
		PhraseID:       phrase.ID,
		Type:           models.ExerciseSentenceBuilder,
		Prompt:         p.sourceText,
		Tokens:         shuffled,
		ExpectedAnswer: strings.Join(canonical, " "),
	}, nil
}

func (b *Builder) buildCloze(phrase models.Phrase, p *resolvedPair) (*models.Exercise, error) {
	tokens := clozeTokens(p)
	maskIdx := pickMaskedToken(tokens)
	if maskIdx < 0 {
		return nil, reject(phrase.ID, models.ExerciseCloze, "no maskable token")
	}

	var context []string
	for i, t := range tokens {
		if i != maskIdx && isLexical(t.surface) {
			context = append(context, t.surface)
		}
	}
	if len(context) == 0 {
		return nil, reject(phrase.ID, models.ExerciseCloze, "empty context")
	}
	if len(context) < 2 {
		return nil, reject(phrase.ID, models.ExerciseCloze, "context too short")
	}
	if mixesLanguages(context) {
		return nil, reject(phrase.ID, models.ExerciseCloze, "mixed-language context")
	}

	masked := tokens[maskIdx].surface
	idx := maskIdx
	return &models.Exercise{
		ExerciseID:     uuid.NewString(),
		PhraseID:       phrase.ID,
		Type:           models.ExerciseCloze,
		Prompt:         clozePrompt(tokens, maskIdx),
		MaskedIndex:    &idx,
		ExpectedAnswer: masked,
	}, nil
}

// clozePrompt rebuilds the sentence from the token list with the masked
// position blanked. Substring replacement on the raw text is not safe here:
// the masked word can occur inside an earlier word (eclipsed and derived
// forms embed their base) and the blank would corrupt that word while
// leaving the answer visible.
func clozePrompt(tokens []clozeToken, maskIdx int) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if i == maskIdx {
			parts[i] = clozeBlank
		} else {
			parts[i] = t.surface
		}
	}
	return strings.Join(parts, " ")
}

// canonicalTokens returns the target-language tokens in canonical order,
// from token metadata when present, else by whitespace split
func canonicalTokens(p *resolvedPair) []string {
	if len(p.targetTokens) > 0 {
		sorted := make([]models.PhraseToken, len(p.targetTokens))
		copy(sorted, p.targetTokens)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
		out := make([]string, 0, len(sorted))
		for _, t := range sorted {
			if s := strings.TrimSpace(t.Surface); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return strings.Fields(p.targetText)
}

type clozeToken struct {
	surface string
	pos     string
}

func clozeTokens(p *resolvedPair) []clozeToken {
	if len(p.targetTokens) > 0 {
		sorted := make([]models.PhraseToken, len(p.targetTokens))
		copy(sorted, p.targetTokens)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
		out := make([]clozeToken, 0, len(sorted))
		for _, t := range sorted {
			if s := strings.TrimSpace(t.Surface); s != "" {
				out = append(out, clozeToken{surface: s, pos: strings.ToUpper(t.POS)})
			}
		}
		return out
	}
	fields := strings.Fields(p.targetText)
	out := make([]clozeToken, 0, len(fields))
	for _, f := range fields {
		out = append(out, clozeToken{surface: f})
	}
	return out
}

// pickMaskedToken prefers the longest content word (noun, verb, adjective)
// and falls back to the longest lexical token. Returns -1 when nothing is
// maskable.
func pickMaskedToken(tokens []clozeToken) int {
	best := -1
	bestLen := 0
	for i, t := range tokens {
		if !isContentPOS(t.pos) || !isLexical(t.surface) {
			continue
		}
		if l := len([]rune(t.surface)); l > bestLen {
			best, bestLen = i, l
		}
	}
	if best >= 0 {
		return best
	}
	for i, t := range tokens {
		if !isLexical(t.surface) {
			continue
		}
		if l := len([]rune(t.surface)); l > bestLen {
			best, bestLen = i, l
		}
	}
	return best
}

func isContentPOS(pos string) bool {
	switch pos {
	case "NOUN", "VERB", "ADJ", "PROPN":
		return true
	}
	return false
}

func isLexical(surface string) bool {
	return len(language.Tokenize(surface)) > 0
}

// mixesLanguages reports whether the context contains tokens exclusive to
// both languages. Words shared by the two stop-word lists ("an", "is", "go")
// don't count either way.
func mixesLanguages(context []string) bool {
	englishOnly := 0
	targetOnly := 0
	for _, raw := range context {
		for _, t := range language.Tokenize(raw) {
			eng := language.ScoreEnglish([]string{t}) > 0
			tgt := language.ScoreTarget([]string{t}) > 0
			switch {
			case eng && !tgt:
				englishOnly++
			case tgt && !eng:
				targetOnly++
			}
		}
	}
	return englishOnly > 0 && targetOnly > 0
}
