package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// ProfileRepository handles database operations for practice profiles
type ProfileRepository struct{}

// NewProfileRepository creates a new repository instance
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

// GetByKey returns the profile for a (client, phrase, exercise type) triple,
// or nil when no row exists yet
func (r *ProfileRepository) GetByKey(clientID string, phraseID int64, exerciseType string) (*models.PracticeProfile, error) {
	var profile models.PracticeProfile
	err := DB.Get(&profile, `
		SELECT * FROM practice_profiles
		WHERE client_id = $1 AND phrase_id = $2 AND exercise_type = $3
	`, clientID, phraseID, exerciseType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get practice profile: %v", err)
	}
	return &profile, nil
}

// Ensure creates profile rows for every phrase that doesn't have one yet.
// Existing rows are left untouched, so this is safe to run on every request.
func (r *ProfileRepository) Ensure(clientID string, phraseIDs []int64, exerciseType string, now time.Time) error {
	for _, phraseID := range phraseIDs {
		_, err := DB.Exec(`
			INSERT INTO practice_profiles (client_id, phrase_id, exercise_type, ease_factor, interval_days, due_at)
			VALUES ($1, $2, $3, 2.5, 0, $4)
			ON CONFLICT (client_id, phrase_id, exercise_type) DO NOTHING
		`, clientID, phraseID, exerciseType, now)
		if err != nil {
			return fmt.Errorf("failed to ensure practice profile: %v", err)
		}
	}
	return nil
}

// GetDue returns profiles due at or before now, earliest first. The caller
// re-orders by weakness; the due_at ordering keeps ties stable.
func (r *ProfileRepository) GetDue(clientID string, exerciseType string, now time.Time) ([]models.PracticeProfile, error) {
	var profiles []models.PracticeProfile
	var err error
	if exerciseType != "" {
		err = DB.Select(&profiles, `
			SELECT * FROM practice_profiles
			WHERE client_id = $1 AND exercise_type = $2 AND due_at <= $3
			ORDER BY due_at ASC
		`, clientID, exerciseType, now)
	} else {
		err = DB.Select(&profiles, `
			SELECT * FROM practice_profiles
			WHERE client_id = $1 AND due_at <= $2
			ORDER BY due_at ASC
		`, clientID, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get due profiles: %v", err)
	}
	return profiles, nil
}

// GetUpcoming returns profiles not yet due, soonest first. Used to backfill
// short queues.
func (r *ProfileRepository) GetUpcoming(clientID string, exerciseType string, now time.Time) ([]models.PracticeProfile, error) {
	var profiles []models.PracticeProfile
	var err error
	if exerciseType != "" {
		err = DB.Select(&profiles, `
			SELECT * FROM practice_profiles
			WHERE client_id = $1 AND exercise_type = $2 AND due_at > $3
			ORDER BY due_at ASC
		`, clientID, exerciseType, now)
	} else {
		err = DB.Select(&profiles, `
			SELECT * FROM practice_profiles
			WHERE client_id = $1 AND due_at > $2
			ORDER BY due_at ASC
		`, clientID, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming profiles: %v", err)
	}
	return profiles, nil
}

// CountDue returns how many profiles are due at or before now
func (r *ProfileRepository) CountDue(clientID string, exerciseType string, now time.Time) (int, error) {
	var count int
	var err error
	if exerciseType != "" {
		err = DB.Get(&count, `
			SELECT COUNT(*) FROM practice_profiles
			WHERE client_id = $1 AND exercise_type = $2 AND due_at <= $3
		`, clientID, exerciseType, now)
	} else {
		err = DB.Get(&count, `
			SELECT COUNT(*) FROM practice_profiles
			WHERE client_id = $1 AND due_at <= $2
		`, clientID, now)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count due profiles: %v", err)
	}
	return count, nil
}

// Update writes the scheduling state back. Last write wins under concurrent
// submissions for the same row; a learner cannot realistically race their
// own answer, so the row is not locked.
func (r *ProfileRepository) Update(profile *models.PracticeProfile) error {
	_, err := DB.Exec(`
		UPDATE practice_profiles SET
			ease_factor = $1,
			interval_days = $2,
			consecutive_correct = $3,
			review_count = $4,
			lapse_count = $5,
			last_reviewed_at = $6,
			due_at = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
	`,
		profile.EaseFactor,
		profile.IntervalDays,
		profile.ConsecutiveCorrect,
		profile.ReviewCount,
		profile.LapseCount,
		profile.LastReviewedAt,
		profile.DueAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update practice profile: %v", err)
	}
	return nil
}

// ResetPhrase removes the learner's profiles for one phrase
func (r *ProfileRepository) ResetPhrase(clientID string, phraseID int64) error {
	_, err := DB.Exec(`
		DELETE FROM practice_profiles WHERE client_id = $1 AND phrase_id = $2
	`, clientID, phraseID)
	if err != nil {
		return fmt.Errorf("failed to reset phrase profiles: %v", err)
	}
	return nil
}

// ResetAll removes every profile the learner has
func (r *ProfileRepository) ResetAll(clientID string) error {
	_, err := DB.Exec(`DELETE FROM practice_profiles WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to reset profiles: %v", err)
	}
	return nil
}
