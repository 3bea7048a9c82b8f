package models

import "time"

// PracticeProfile tracks a learner's scheduling state for one phrase and
// exercise type. Exactly one live row exists per (client, phrase, type).
type PracticeProfile struct {
	ID                 int64     `json:"id" db:"id"`
	ClientID           string    `json:"client_id" db:"client_id"`
	PhraseID           int64     `json:"phrase_id" db:"phrase_id"`
	ExerciseType       string    `json:"exercise_type" db:"exercise_type"`
	EaseFactor         float64   `json:"ease_factor" db:"ease_factor"`       // clamped to [1.3, 3.0]
	IntervalDays       int       `json:"interval_days" db:"interval_days"`   // never negative
	ConsecutiveCorrect int       `json:"consecutive_correct" db:"consecutive_correct"`
	ReviewCount        int       `json:"review_count" db:"review_count"`
	LapseCount         int       `json:"lapse_count" db:"lapse_count"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	DueAt              time.Time `json:"due_at" db:"due_at"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
