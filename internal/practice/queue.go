package practice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/decyphr-net/practice-engine/internal/exercise"
	"github.com/decyphr-net/practice-engine/internal/srs"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

const (
	defaultQueueSize = 10
	maxQueueSize     = 50
)

// DueQueue is the prioritized batch of exercises served to a learner
type DueQueue struct {
	TotalDue int               `json:"totalDue"`
	Items    []models.Exercise `json:"items"`
}

// GetDue assembles a queue of exactly limit exercises whenever at least one
// constructible exercise exists. Due profiles come first (weakest first),
// then not-yet-due backfill, then repeat-fill clones of what was already
// selected.
func (s *Service) GetDue(ctx context.Context, clientID string, limit int, exerciseType models.ExerciseType) (*DueQueue, error) {
	if limit <= 0 {
		limit = defaultQueueSize
	}
	if limit > maxQueueSize {
		limit = maxQueueSize
	}

	types := []models.ExerciseType{
		models.ExerciseTypedTranslation,
		models.ExerciseSentenceBuilder,
		models.ExerciseCloze,
	}
	if exerciseType != "" {
		if !exerciseType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExerciseType, exerciseType)
		}
		types = []models.ExerciseType{exerciseType}
	}

	phraseList, err := s.source.Phrases(ctx, clientID)
	if err != nil {
		return nil, err
	}

	phrasesByID := make(map[int64]models.Phrase, len(phraseList))
	for _, p := range phraseList {
		phrasesByID[p.ID] = p
	}

	now := s.now()

	// Profiles exist for every constructible (phrase, type) combination.
	// Constructibility is probed by building; phrases that fail just never
	// get a profile for that type.
	for _, t := range types {
		var constructible []int64
		for _, p := range phraseList {
			if _, err := s.builder.Build(p, t); err == nil {
				constructible = append(constructible, p.ID)
			} else if !errors.Is(err, exercise.ErrNotConstructible) {
				return nil, err
			}
		}
		if err := s.profiles.Ensure(clientID, constructible, string(t), now); err != nil {
			return nil, err
		}
	}

	typeFilter := ""
	if exerciseType != "" {
		typeFilter = string(exerciseType)
	}

	due, err := s.profiles.GetDue(clientID, typeFilter, now)
	if err != nil {
		return nil, err
	}
	sortByWeakness(due)

	queue := &DueQueue{TotalDue: len(due), Items: []models.Exercise{}}
	s.fillFromProfiles(queue, due, phrasesByID, limit)

	if len(queue.Items) < limit {
		upcoming, err := s.profiles.GetUpcoming(clientID, typeFilter, now)
		if err != nil {
			return nil, err
		}
		sortByWeakness(upcoming)
		s.fillFromProfiles(queue, upcoming, phrasesByID, limit)
	}

	// Repeat-fill: with every profile exhausted, cycle the selected items so
	// the learner always gets the batch size they asked for.
	if n := len(queue.Items); n > 0 && n < limit {
		for round := 2; len(queue.Items) < limit; round++ {
			for i := 0; i < n && len(queue.Items) < limit; i++ {
				clone := queue.Items[i]
				clone.ExerciseID = fmt.Sprintf("%s#%d", queue.Items[i].ExerciseID, round)
				queue.Items = append(queue.Items, clone)
			}
		}
	}

	return queue, nil
}

// fillFromProfiles builds exercises for the given profiles in order,
// silently skipping any that fail to construct
func (s *Service) fillFromProfiles(queue *DueQueue, profiles []models.PracticeProfile, phrasesByID map[int64]models.Phrase, limit int) {
	for _, profile := range profiles {
		if len(queue.Items) >= limit {
			return
		}
		phrase, ok := phrasesByID[profile.PhraseID]
		if !ok {
			continue
		}
		built, err := s.builder.Build(phrase, models.ExerciseType(profile.ExerciseType))
		if err != nil {
			if !errors.Is(err, exercise.ErrNotConstructible) {
				s.log.Warn("exercise build failed", "phraseId", profile.PhraseID, "error", err)
			}
			continue
		}
		built.DueAt = profile.DueAt.Format(time.RFC3339)
		queue.Items = append(queue.Items, *built)
	}
}

// sortByWeakness orders profiles weakest first, breaking ties by earliest
// due time
func sortByWeakness(profiles []models.PracticeProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		wi, wj := srs.Weakness(&profiles[i]), srs.Weakness(&profiles[j])
		if wi != wj {
			return wi > wj
		}
		return profiles[i].DueAt.Before(profiles[j].DueAt)
	})
}
