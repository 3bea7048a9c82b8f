package models

import "time"

// PracticeAttempt is one submitted answer. Append-only, never mutated.
type PracticeAttempt struct {
	ID               string    `json:"id" db:"id"`
	ClientID         string    `json:"client_id" db:"client_id"`
	PhraseID         int64     `json:"phrase_id" db:"phrase_id"`
	ExerciseType     string    `json:"exercise_type" db:"exercise_type"`
	PromptText       string    `json:"prompt_text" db:"prompt_text"`
	ExpectedAnswer   string    `json:"expected_answer" db:"expected_answer"`
	UserAnswer       string    `json:"user_answer" db:"user_answer"`
	IsCorrect        bool      `json:"is_correct" db:"is_correct"`
	Score            int       `json:"score" db:"score"`
	LatencyMs        int       `json:"latency_ms" db:"latency_ms"`
	HintsUsed        int       `json:"hints_used" db:"hints_used"`
	GradingMethod    string    `json:"grading_method" db:"grading_method"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ExerciseTypeAccuracy aggregates attempt outcomes for one exercise type
type ExerciseTypeAccuracy struct {
	ExerciseType string  `json:"exercise_type" db:"exercise_type"`
	Attempts     int     `json:"attempts" db:"attempts"`
	Correct      int     `json:"correct" db:"correct"`
	AvgScore     float64 `json:"avg_score" db:"avg_score"`
}
