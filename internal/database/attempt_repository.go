package database

import (
	"fmt"
	"time"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// AttemptRepository handles database operations for practice attempts
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// Create appends an attempt row. Attempts are immutable; there is no update.
func (r *AttemptRepository) Create(attempt *models.PracticeAttempt) error {
	_, err := DB.Exec(`
		INSERT INTO practice_attempts (
			id, client_id, phrase_id, exercise_type, prompt_text,
			expected_answer, user_answer, is_correct, score,
			latency_ms, hints_used, grading_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		attempt.ID,
		attempt.ClientID,
		attempt.PhraseID,
		attempt.ExerciseType,
		attempt.PromptText,
		attempt.ExpectedAnswer,
		attempt.UserAnswer,
		attempt.IsCorrect,
		attempt.Score,
		attempt.LatencyMs,
		attempt.HintsUsed,
		attempt.GradingMethod,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %v", err)
	}
	return nil
}

// AccuracyByType aggregates attempts per exercise type within a window.
// Zero time bounds mean "no bound on that side".
func (r *AttemptRepository) AccuracyByType(clientID string, from, to time.Time) ([]models.ExerciseTypeAccuracy, error) {
	query := `
		SELECT exercise_type,
		       COUNT(*) AS attempts,
		       SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct,
		       COALESCE(AVG(score), 0) AS avg_score
		FROM practice_attempts
		WHERE client_id = $1
	`
	args := []interface{}{clientID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " GROUP BY exercise_type ORDER BY exercise_type"

	var rows []models.ExerciseTypeAccuracy
	if err := DB.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate accuracy: %v", err)
	}
	return rows, nil
}

// History returns a page of the learner's attempts, newest first
func (r *AttemptRepository) History(clientID string, from, to time.Time, page, pageSize int) ([]models.PracticeAttempt, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where := "WHERE client_id = $1"
	args := []interface{}{clientID}
	if !from.IsZero() {
		args = append(args, from)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	if err := DB.Get(&total, "SELECT COUNT(*) FROM practice_attempts "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count attempts: %v", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(
		"SELECT * FROM practice_attempts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var attempts []models.PracticeAttempt
	if err := DB.Select(&attempts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get attempt history: %v", err)
	}
	return attempts, total, nil
}

// ActiveClients lists clients with at least one attempt, for the stats job
func (r *AttemptRepository) ActiveClients() ([]string, error) {
	var clients []string
	if err := DB.Select(&clients, "SELECT DISTINCT client_id FROM practice_attempts"); err != nil {
		return nil, fmt.Errorf("failed to list active clients: %v", err)
	}
	return clients, nil
}
