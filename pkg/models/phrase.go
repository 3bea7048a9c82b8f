package models

// PhraseToken is one token of a phrase as tagged by the external corpus
type PhraseToken struct {
	Position int    `json:"position"`
	Surface  string `json:"surface"`
	Lemma    string `json:"lemma,omitempty"`
	POS      string `json:"pos,omitempty"`
}

// Phrase is a language-pair phrase from the external corpus. Read-only.
type Phrase struct {
	ID          int64         `json:"id"`
	Text        string        `json:"text"`
	Translation string        `json:"translation"`
	Tokens      []PhraseToken `json:"tokens,omitempty"`
}

// ExerciseType identifies the shape of a practice exercise
type ExerciseType string

const (
	ExerciseTypedTranslation ExerciseType = "typed_translation"
	ExerciseSentenceBuilder  ExerciseType = "sentence_builder"
	ExerciseCloze            ExerciseType = "cloze"
)

// Valid reports whether t is one of the known exercise types
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseTypedTranslation, ExerciseSentenceBuilder, ExerciseCloze:
		return true
	}
	return false
}

// Exercise is a fully built exercise ready to serve to a learner
type Exercise struct {
	ExerciseID     string       `json:"exerciseId"`
	PhraseID       int64        `json:"phraseId"`
	Type           ExerciseType `json:"exerciseType"`
	Prompt         string       `json:"prompt"`
	Tokens         []string     `json:"tokens,omitempty"`      // shuffled, sentence_builder only
	MaskedIndex    *int         `json:"maskedIndex,omitempty"` // cloze only
	ExpectedAnswer string       `json:"expectedAnswer"`
	DueAt          string       `json:"dueAt,omitempty"`
}
