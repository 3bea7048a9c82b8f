package models

import "time"

// Word identity is (lemma, pos, language). Effectively append-only.
type Word struct {
	ID        int64     `json:"id" db:"id"`
	Lemma     string    `json:"lemma" db:"lemma"`
	POS       string    `json:"pos" db:"pos"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WordForm is a surface inflection pointing back to a Word
type WordForm struct {
	ID        int64     `json:"id" db:"id"`
	WordID    int64     `json:"word_id" db:"word_id"`
	Form      string    `json:"form" db:"form"`
	Morph     string    `json:"morph" db:"morph"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CefrWord maps a lemma/pos pair to a CEFR level (A1..C1)
type CefrWord struct {
	ID       int64  `json:"id" db:"id"`
	Lemma    string `json:"lemma" db:"lemma"`
	POS      string `json:"pos" db:"pos"`
	Language string `json:"language" db:"language"`
	Level    string `json:"level" db:"level"`
}
