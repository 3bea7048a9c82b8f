package practice

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/exercise"
	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/internal/phrases"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// fakeSource serves a fixed in-memory corpus
type fakeSource struct {
	phrases []models.Phrase
}

func (f *fakeSource) Phrases(_ context.Context, _ string) ([]models.Phrase, error) {
	return f.phrases, nil
}

func (f *fakeSource) PhraseByID(_ context.Context, _ string, phraseID int64) (*models.Phrase, error) {
	for i := range f.phrases {
		if f.phrases[i].ID == phraseID {
			return &f.phrases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", phrases.ErrPhraseNotFound, phraseID)
}

func testCorpus() []models.Phrase {
	return []models.Phrase{
		{
			ID:          1,
			Text:        "Tá an leabhar ar an mbord",
			Translation: "The book is on the table",
			Tokens: []models.PhraseToken{
				{Position: 0, Surface: "Tá", Lemma: "bí", POS: "VERB"},
				{Position: 1, Surface: "an", Lemma: "an", POS: "DET"},
				{Position: 2, Surface: "leabhar", Lemma: "leabhar", POS: "NOUN"},
				{Position: 3, Surface: "ar", Lemma: "ar", POS: "ADP"},
				{Position: 4, Surface: "an", Lemma: "an", POS: "DET"},
				{Position: 5, Surface: "mbord", Lemma: "bord", POS: "NOUN"},
			},
		},
		{
			// two tokens: builds translations and sentence builders, not cloze
			ID:          2,
			Text:        "Dia dhuit",
			Translation: "Hello and good day to you",
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { _ = database.Close() })

	return NewService(
		database.NewProfileRepository(),
		database.NewAttemptRepository(),
		database.NewStatsRepository(),
		&fakeSource{phrases: testCorpus()},
		exercise.NewBuilderWithSeed(1),
		logger.NewNop(),
	)
}

func TestSubmitAttemptCorrectAnswer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.SubmitAttempt(ctx, "c1", AttemptRequest{
		ExerciseType: models.ExerciseTypedTranslation,
		PhraseID:     1,
		UserAnswer:   "Tá an leabhar ar an mbord",
	})
	require.NoError(t, err)

	assert.True(t, res.IsCorrect)
	assert.Equal(t, 100, res.Score)
	assert.NotEmpty(t, res.AttemptID)
	assert.Equal(t, 1, res.ProfileStats.ReviewCount)
	assert.Equal(t, 1, res.ProfileStats.ConsecutiveCorrect)
	assert.GreaterOrEqual(t, res.ProfileStats.IntervalDays, 1)
	assert.True(t, res.NextDueAt.After(time.Now()))

	// the attempt row is persisted
	attempts, total, err := svc.History(ctx, "c1", time.Time{}, time.Time{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, res.AttemptID, attempts[0].ID)
	assert.Equal(t, "exact", attempts[0].GradingMethod)
}

func TestSubmitAttemptWrongAnswerLapses(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseTypedTranslation,
		PhraseID:     1,
		UserAnswer:   "capall mór",
	})
	require.NoError(t, err)

	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0, res.ProfileStats.IntervalDays)
	assert.Equal(t, 1, res.ProfileStats.LapseCount)
	assert.Equal(t, 0, res.ProfileStats.ConsecutiveCorrect)
	// cooldown review within minutes, not days
	assert.True(t, res.NextDueAt.Before(time.Now().Add(6*time.Minute)))
}

func TestSubmitAttemptSentenceBuilder(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseSentenceBuilder,
		PhraseID:     1,
		UserTokens:   []string{"Tá", "an", "leabhar", "ar", "an", "mbord"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 100, res.Score)

	wrong, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseSentenceBuilder,
		PhraseID:     1,
		UserTokens:   []string{"an", "Tá", "leabhar", "ar", "an", "mbord"},
	})
	require.NoError(t, err)
	assert.False(t, wrong.IsCorrect)
}

func TestSubmitAttemptInvalidType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseType("multiple_choice"),
		PhraseID:     1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidExerciseType))
}

func TestSubmitAttemptUnknownPhrase(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseTypedTranslation,
		PhraseID:     99,
		UserAnswer:   "rud éigin",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, phrases.ErrPhraseNotFound))
}

func TestSubmitAttemptUnbuildableCombination(t *testing.T) {
	svc := newTestService(t)

	// phrase 2 has no cloze shape
	_, err := svc.SubmitAttempt(context.Background(), "c1", AttemptRequest{
		ExerciseType: models.ExerciseCloze,
		PhraseID:     2,
		UserAnswer:   "dhuit",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, phrases.ErrPhraseNotFound))
}

func TestGetDueFillsToLimit(t *testing.T) {
	svc := newTestService(t)

	queue, err := svc.GetDue(context.Background(), "c1", 5, models.ExerciseTypedTranslation)
	require.NoError(t, err)

	// two constructible phrases, repeat-filled to the requested size
	assert.Equal(t, 2, queue.TotalDue)
	require.Len(t, queue.Items, 5)
	assert.True(t, strings.HasSuffix(queue.Items[2].ExerciseID, "#2"))
	assert.True(t, strings.HasSuffix(queue.Items[4].ExerciseID, "#3"))
	for _, item := range queue.Items {
		assert.Equal(t, models.ExerciseTypedTranslation, item.Type)
		assert.NotEmpty(t, item.DueAt)
	}
}

func TestGetDueAllTypes(t *testing.T) {
	svc := newTestService(t)

	queue, err := svc.GetDue(context.Background(), "c1", 10, "")
	require.NoError(t, err)

	// phrase 1 builds all three shapes, phrase 2 builds two
	assert.Equal(t, 5, queue.TotalDue)
	assert.Len(t, queue.Items, 10)
}

func TestGetDueInvalidType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetDue(context.Background(), "c1", 5, models.ExerciseType("bogus"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidExerciseType))
}

func TestGetDueClampsLimit(t *testing.T) {
	svc := newTestService(t)

	queue, err := svc.GetDue(context.Background(), "c1", 500, models.ExerciseTypedTranslation)
	require.NoError(t, err)
	assert.Len(t, queue.Items, 50)
}

func TestProgressFallsBackToLiveAggregate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, "c1", AttemptRequest{
		ExerciseType: models.ExerciseTypedTranslation,
		PhraseID:     1,
		UserAnswer:   "Tá an leabhar ar an mbord",
	})
	require.NoError(t, err)

	// no cached stats row yet, so the live aggregate answers
	rows, err := svc.Progress(ctx, "c1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "typed_translation", rows[0].ExerciseType)
	assert.Equal(t, 1, rows[0].Attempts)
}

func TestResetClearsSchedulingNotHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, "c1", AttemptRequest{
		ExerciseType: models.ExerciseTypedTranslation,
		PhraseID:     1,
		UserAnswer:   "Tá an leabhar ar an mbord",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "c1", nil))

	profile, err := database.NewProfileRepository().GetByKey("c1", 1, "typed_translation")
	require.NoError(t, err)
	assert.Nil(t, profile)

	// attempt history survives the reset
	_, total, err := svc.History(ctx, "c1", time.Time{}, time.Time{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestResetSinglePhrase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetDue(ctx, "c1", 5, "")
	require.NoError(t, err)

	phraseID := int64(1)
	require.NoError(t, svc.Reset(ctx, "c1", &phraseID))

	gone, err := database.NewProfileRepository().GetByKey("c1", 1, "typed_translation")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := database.NewProfileRepository().GetByKey("c1", 2, "typed_translation")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
