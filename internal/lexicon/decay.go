package lexicon

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/scorestore"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

const (
	decayLambda = 0.15
	// a word with no recorded exposure is treated as a year stale
	unseenDays = 365.0
)

// DecayedScore reduces a raw accumulated score by time since last exposure.
// Dividing by log1p(raw) makes weakly-known words decay faster than
// well-established ones. Equals raw at days == 0 and is strictly decreasing
// in days for raw > 0.
func DecayedScore(raw, days float64) float64 {
	if raw <= 0 {
		return 0
	}
	if days <= 0 {
		return raw
	}
	return raw * math.Exp(-decayLambda*days/math.Log1p(raw))
}

// DecayEngine produces decayed word-score snapshots
type DecayEngine struct {
	scores scorestore.Store
	words  *database.WordRepository
	now    func() time.Time
}

// NewDecayEngine creates a decay engine
func NewDecayEngine(scores scorestore.Store, words *database.WordRepository) *DecayEngine {
	return &DecayEngine{scores: scores, words: words, now: time.Now}
}

// Snapshot returns the learner's full word set with decayed scores, sorted
// descending by decayed score
func (e *DecayEngine) Snapshot(ctx context.Context, clientID, lang string) ([]models.WordScore, error) {
	raw, err := e.scores.Scores(ctx, clientID, lang)
	if err != nil {
		return nil, err
	}
	seen, err := e.scores.SeenAt(ctx, clientID, lang)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	words, err := e.words.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	now := e.now()
	snapshot := make([]models.WordScore, 0, len(raw))
	for id, score := range raw {
		days := unseenDays
		var lastSeen *time.Time
		if at, ok := seen[id]; ok {
			t := at
			lastSeen = &t
			days = now.Sub(at).Hours() / 24
			if days < 0 {
				days = 0
			}
		}

		entry := models.WordScore{
			WordID:       id,
			RawScore:     score,
			DecayedScore: DecayedScore(score, days),
			LastSeenAt:   lastSeen,
		}
		if w, ok := words[id]; ok {
			entry.Lemma = w.Lemma
			entry.POS = w.POS
		}
		snapshot = append(snapshot, entry)
	}

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].DecayedScore != snapshot[j].DecayedScore {
			return snapshot[i].DecayedScore > snapshot[j].DecayedScore
		}
		return snapshot[i].WordID < snapshot[j].WordID
	})
	return snapshot, nil
}
