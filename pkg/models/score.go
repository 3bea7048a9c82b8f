package models

import "time"

// WordScore is one entry of a learner's word-score snapshot. RawScore is the
// accumulated weighted score; DecayedScore is what ranking and assessment use.
type WordScore struct {
	WordID       int64      `json:"wordId"`
	Lemma        string     `json:"lemma"`
	POS          string     `json:"pos"`
	RawScore     float64    `json:"rawScore"`
	DecayedScore float64    `json:"decayedScore"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
}

// CefrCoverage is the derived per-level mastery coverage. Never stored.
type CefrCoverage struct {
	Level          string  `json:"level"`
	TotalWeight    float64 `json:"totalWeight"`
	MasteredWeight float64 `json:"masteredWeight"`
	Coverage       float64 `json:"coverage"`
}

// CefrAssessment is the inferred proficiency estimate with its inputs
type CefrAssessment struct {
	Level      string         `json:"level"`
	Confidence float64        `json:"confidence"`
	Coverage   []CefrCoverage `json:"coverage"`
	Signals    []string       `json:"signals"`
}
