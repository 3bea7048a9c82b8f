package database

import (
	"fmt"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// StatsRepository maintains the periodically recomputed attempt aggregates.
// Rows are written by upsert from the batch job and read by the progress
// endpoint; slight staleness between runs is acceptable.
type StatsRepository struct{}

// NewStatsRepository creates a new repository instance
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// Upsert writes one aggregate row. Idempotent for identical inputs, so the
// job is safe to re-run or to race with the request path.
func (r *StatsRepository) Upsert(clientID string, acc models.ExerciseTypeAccuracy) error {
	_, err := DB.Exec(`
		INSERT INTO practice_stats (client_id, exercise_type, attempts, correct, avg_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (client_id, exercise_type) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			correct = EXCLUDED.correct,
			avg_score = EXCLUDED.avg_score,
			updated_at = CURRENT_TIMESTAMP
	`, clientID, acc.ExerciseType, acc.Attempts, acc.Correct, acc.AvgScore)
	if err != nil {
		return fmt.Errorf("failed to upsert practice stats: %v", err)
	}
	return nil
}

// GetByClient returns the cached aggregates for a learner
func (r *StatsRepository) GetByClient(clientID string) ([]models.ExerciseTypeAccuracy, error) {
	var rows []models.ExerciseTypeAccuracy
	err := DB.Select(&rows, `
		SELECT exercise_type, attempts, correct, avg_score
		FROM practice_stats
		WHERE client_id = $1
		ORDER BY exercise_type
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get practice stats: %v", err)
	}
	return rows, nil
}
