package lexicon

import "strings"

// Base weights per interaction type. Deliberate interactions (writing a chat
// message) count for more than passive exposure.
var baseWeights = map[string]float64{
	"chat_message":  3.0,
	"word_practice": 2.5,
	"translation":   2.0,
	"passive_read":  1.0,
}

const defaultBaseWeight = 1.0

// POS multipliers. Content words carry the mastery signal; function words
// are so frequent that full weight would swamp everything else.
var posMultipliers = map[string]float64{
	"NOUN":  1.0,
	"VERB":  1.0,
	"ADJ":   1.0,
	"PROPN": 1.0,
	"ADV":   0.8,
	"PRON":  0.5,
	"ADP":   0.2,
	"DET":   0.15,
	"CONJ":  0.15,
	"CCONJ": 0.15,
	"SCONJ": 0.15,
	"PART":  0.1,
	"AUX":   0.5,
	"INTJ":  0.5,
}

const defaultPOSMultiplier = 0.5

// skippedPOS tags never produce word rows or scores
var skippedPOS = map[string]struct{}{
	"PUNCT": {},
	"SYM":   {},
	"NUM":   {},
	"X":     {},
}

// BaseWeight returns the weight for an interaction type
func BaseWeight(interactionType string) float64 {
	if w, ok := baseWeights[strings.ToLower(interactionType)]; ok {
		return w
	}
	return defaultBaseWeight
}

// POSMultiplier returns the part-of-speech multiplier
func POSMultiplier(pos string) float64 {
	if m, ok := posMultipliers[strings.ToUpper(pos)]; ok {
		return m
	}
	return defaultPOSMultiplier
}

// SkipPOS reports whether tokens with this tag are dropped outright
func SkipPOS(pos string) bool {
	_, ok := skippedPOS[strings.ToUpper(pos)]
	return ok
}
