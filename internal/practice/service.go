// Package practice orchestrates the practice loop: serving due exercises,
// grading submissions, and rescheduling review.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/exercise"
	"github.com/decyphr-net/practice-engine/internal/grading"
	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/internal/phrases"
	"github.com/decyphr-net/practice-engine/internal/srs"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// PhraseSource is the read-only phrase corpus the service consumes
type PhraseSource interface {
	Phrases(ctx context.Context, clientID string) ([]models.Phrase, error)
	PhraseByID(ctx context.Context, clientID string, phraseID int64) (*models.Phrase, error)
}

// Service wires the builder, grader and scheduler around the profile and
// attempt stores
type Service struct {
	profiles  *database.ProfileRepository
	attempts  *database.AttemptRepository
	stats     *database.StatsRepository
	source    PhraseSource
	builder   *exercise.Builder
	scheduler *srs.Scheduler
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates the practice service
func NewService(
	profiles *database.ProfileRepository,
	attempts *database.AttemptRepository,
	stats *database.StatsRepository,
	source PhraseSource,
	builder *exercise.Builder,
	log *logger.Logger,
) *Service {
	return &Service{
		profiles:  profiles,
		attempts:  attempts,
		stats:     stats,
		source:    source,
		builder:   builder,
		scheduler: srs.New(srs.PracticePolicy()),
		log:       log.With("service", "Practice"),
		now:       time.Now,
	}
}

// AttemptRequest is one submitted answer
type AttemptRequest struct {
	ExerciseType models.ExerciseType `json:"exerciseType"`
	PhraseID     int64               `json:"phraseId"`
	UserAnswer   string              `json:"userAnswer,omitempty"`
	UserTokens   []string            `json:"userTokens,omitempty"`
	LatencyMs    int                 `json:"latencyMs,omitempty"`
	HintsUsed    int                 `json:"hintsUsed,omitempty"`
}

// ProfileStats is the scheduling state reported back after an attempt
type ProfileStats struct {
	EaseFactor         float64 `json:"easeFactor"`
	IntervalDays       int     `json:"intervalDays"`
	ConsecutiveCorrect int     `json:"consecutiveCorrect"`
	ReviewCount        int     `json:"reviewCount"`
	LapseCount         int     `json:"lapseCount"`
	Weakness           float64 `json:"weakness"`
}

// AttemptResult is the response to a submitted answer
type AttemptResult struct {
	AttemptID          string       `json:"attemptId"`
	IsCorrect          bool         `json:"isCorrect"`
	Score              int          `json:"score"`
	NormalizedExpected string       `json:"normalizedExpected"`
	NextDueAt          time.Time    `json:"nextDueAt"`
	ProfileStats       ProfileStats `json:"profileStats"`
}

// SubmitAttempt grades the answer, reschedules the profile, and appends the
// attempt row. The profile update is a read-modify-write; concurrent
// submissions for the same (client, phrase, type) are last-write-wins.
func (s *Service) SubmitAttempt(ctx context.Context, clientID string, req AttemptRequest) (*AttemptResult, error) {
	if !req.ExerciseType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExerciseType, req.ExerciseType)
	}

	phrase, err := s.source.PhraseByID(ctx, clientID, req.PhraseID)
	if err != nil {
		return nil, err
	}

	built, err := s.builder.Build(*phrase, req.ExerciseType)
	if err != nil {
		if errors.Is(err, exercise.ErrNotConstructible) {
			// A direct request against an unbuildable phrase is a not-found,
			// not a server fault.
			return nil, fmt.Errorf("%w: phrase %d has no %s exercise", phrases.ErrPhraseNotFound, req.PhraseID, req.ExerciseType)
		}
		return nil, err
	}

	var result grading.Result
	if req.ExerciseType == models.ExerciseSentenceBuilder {
		result = grading.GradeTokens(strings.Fields(built.ExpectedAnswer), req.UserTokens)
	} else {
		result = grading.GradeText(req.ExerciseType, built.ExpectedAnswer, req.UserAnswer)
	}

	now := s.now()
	profile, err := s.profiles.GetByKey(clientID, req.PhraseID, string(req.ExerciseType))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		// first exposure; the profile row is created lazily
		if err := s.profiles.Ensure(clientID, []int64{req.PhraseID}, string(req.ExerciseType), now); err != nil {
			return nil, err
		}
		if profile, err = s.profiles.GetByKey(clientID, req.PhraseID, string(req.ExerciseType)); err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, fmt.Errorf("failed to create practice profile for phrase %d", req.PhraseID)
		}
	}

	s.scheduler.Apply(profile, srs.GradeFromScore(result.Score))
	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}

	userAnswer := req.UserAnswer
	if req.ExerciseType == models.ExerciseSentenceBuilder {
		userAnswer = strings.Join(req.UserTokens, " ")
	}
	attempt := &models.PracticeAttempt{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		PhraseID:       req.PhraseID,
		ExerciseType:   string(req.ExerciseType),
		PromptText:     built.Prompt,
		ExpectedAnswer: built.ExpectedAnswer,
		UserAnswer:     userAnswer,
		IsCorrect:      result.IsCorrect,
		Score:          result.Score,
		LatencyMs:      req.LatencyMs,
		HintsUsed:      req.HintsUsed,
		GradingMethod:  result.Method,
		CreatedAt:      now,
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}

	return &AttemptResult{
		AttemptID:          attempt.ID,
		IsCorrect:          result.IsCorrect,
		Score:              result.Score,
		NormalizedExpected: result.NormalizedExpected,
		NextDueAt:          profile.DueAt,
		ProfileStats: ProfileStats{
			EaseFactor:         profile.EaseFactor,
			IntervalDays:       profile.IntervalDays,
			ConsecutiveCorrect: profile.ConsecutiveCorrect,
			ReviewCount:        profile.ReviewCount,
			LapseCount:         profile.LapseCount,
			Weakness:           srs.Weakness(profile),
		},
	}, nil
}

// ErrInvalidExerciseType rejects unknown exercise types before any lookup
var ErrInvalidExerciseType = errors.New("invalid exercise type")

// Progress returns aggregate accuracy by exercise type. Unbounded requests
// are served from the periodically recomputed cache; date-bounded requests
// aggregate live.
func (s *Service) Progress(ctx context.Context, clientID string, from, to time.Time) ([]models.ExerciseTypeAccuracy, error) {
	if from.IsZero() && to.IsZero() {
		cached, err := s.stats.GetByClient(clientID)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			return cached, nil
		}
		// no cached row yet; fall through to the live aggregate
	}
	return s.attempts.AccuracyByType(clientID, from, to)
}

// History returns a page of the learner's attempts, newest first
func (s *Service) History(ctx context.Context, clientID string, from, to time.Time, page, pageSize int) ([]models.PracticeAttempt, int, error) {
	return s.attempts.History(clientID, from, to, page, pageSize)
}

// Reset deletes the learner's profiles for one phrase, or all of them when
// phraseID is nil. Attempt history is immutable and survives resets.
func (s *Service) Reset(ctx context.Context, clientID string, phraseID *int64) error {
	if phraseID != nil {
		return s.profiles.ResetPhrase(clientID, *phraseID)
	}
	return s.profiles.ResetAll(clientID)
}
