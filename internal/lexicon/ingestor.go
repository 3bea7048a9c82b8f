// Package lexicon maintains the per-learner word mastery model: event
// ingestion, time decay, and CEFR assessment.
package lexicon

import (
	"context"
	"strings"
	"time"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/internal/scorestore"
)

// Token is one tagged token of an ingested sentence
type Token struct {
	Surface string `json:"surface"`
	Lemma   string `json:"lemma,omitempty"`
	POS     string `json:"pos"`
	Morph   string `json:"morph,omitempty"`
}

// Sentence is one tokenized sentence of an ingestion event
type Sentence struct {
	SentenceID string  `json:"sentenceId"`
	Text       string  `json:"text"`
	Tokens     []Token `json:"tokens"`
}

// Interaction describes how the learner encountered the sentences
type Interaction struct {
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Event is a batch of tokenized sentences for one learner and language
type Event struct {
	ClientID    string       `json:"clientId"`
	Language    string       `json:"language"`
	Interaction *Interaction `json:"interaction,omitempty"`
	Sentences   []Sentence   `json:"sentences"`
}

// Summary reports what one ingestion run did
type Summary struct {
	TokensSeen    int `json:"tokensSeen"`
	TokensDropped int `json:"tokensDropped"`
	WordsResolved int `json:"wordsResolved"`
	ScoreFailures int `json:"scoreFailures"`
}

// Ingestor resolves word identity and accumulates interaction scores.
// Identity resolution is idempotent; scoring is additive on purpose —
// replaying an event increases scores again, because repetition should
// increase priority.
type Ingestor struct {
	words  *database.WordRepository
	scores scorestore.Store
	log    *logger.Logger
	now    func() time.Time
}

// NewIngestor creates an ingestor
func NewIngestor(words *database.WordRepository, scores scorestore.Store, log *logger.Logger) *Ingestor {
	return &Ingestor{
		words:  words,
		scores: scores,
		log:    log.With("service", "LexiconIngestor"),
		now:    time.Now,
	}
}

// Ingest processes one event. Malformed tokens are dropped individually;
// score-store failures are logged and counted but don't fail the batch,
// since the identity rows have already committed and the event can be
// replayed safely.
func (i *Ingestor) Ingest(ctx context.Context, event Event) (*Summary, error) {
	summary := &Summary{}

	interactionType := "passive_read"
	seenAt := i.now()
	if event.Interaction != nil {
		if event.Interaction.Type != "" {
			interactionType = event.Interaction.Type
		}
		if event.Interaction.Timestamp != nil {
			seenAt = *event.Interaction.Timestamp
		}
	}
	base := BaseWeight(interactionType)

	// Collect the usable tokens and their identity keys first, so words can
	// be resolved in one bulk get-or-create.
	type resolved struct {
		token Token
		key   database.WordKey
	}
	var usable []resolved
	keySet := make(map[database.WordKey]struct{})

	for _, sentence := range event.Sentences {
		for _, token := range sentence.Tokens {
			summary.TokensSeen++
			surface := strings.TrimSpace(token.Surface)
			if surface == "" || SkipPOS(token.POS) {
				summary.TokensDropped++
				continue
			}
			lemma := strings.ToLower(strings.TrimSpace(token.Lemma))
			if lemma == "" {
				lemma = strings.ToLower(surface)
			}
			key := database.WordKey{
				Lemma:    lemma,
				POS:      strings.ToUpper(token.POS),
				Language: event.Language,
			}
			usable = append(usable, resolved{token: token, key: key})
			keySet[key] = struct{}{}
		}
	}
	if len(usable) == 0 {
		return summary, nil
	}

	keys := make([]database.WordKey, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	words, err := i.words.GetOrCreateWords(keys)
	if err != nil {
		return nil, err
	}
	summary.WordsResolved = len(words)

	for _, r := range usable {
		word, ok := words[r.key]
		if !ok {
			summary.TokensDropped++
			continue
		}

		if _, err := i.words.GetOrCreateForm(word.ID, strings.TrimSpace(r.token.Surface), r.token.Morph); err != nil {
			i.log.Warn("word form resolution failed",
				"lemma", r.key.Lemma, "form", r.token.Surface, "error", err)
		}

		weight := base * POSMultiplier(r.key.POS)
		if weight > 0 {
			if err := i.scores.Add(ctx, event.ClientID, event.Language, word.ID, weight); err != nil {
				summary.ScoreFailures++
				i.log.Error("score update failed", "wordId", word.ID, "error", err)
			}
		}
		// Seen regardless of weight: exposure resets decay even when the
		// token scores nothing.
		if err := i.scores.MarkSeen(ctx, event.ClientID, event.Language, word.ID, seenAt); err != nil {
			summary.ScoreFailures++
			i.log.Error("seen timestamp update failed", "wordId", word.ID, "error", err)
		}
	}

	return summary, nil
}
