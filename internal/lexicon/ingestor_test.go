package lexicon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/logger"
)

func chatEvent() Event {
	return Event{
		ClientID: "client-1",
		Language: "ga",
		Interaction: &Interaction{
			Type: "chat_message",
		},
		Sentences: []Sentence{
			{
				SentenceID: "s-1",
				Text:       "Tá an leabhar anseo!",
				Tokens: []Token{
					{Surface: "Tá", Lemma: "bí", POS: "VERB"},
					{Surface: "an", Lemma: "an", POS: "DET"},
					{Surface: "leabhar", Lemma: "leabhar", POS: "NOUN"},
					{Surface: "anseo", Lemma: "anseo", POS: "ADV"},
					{Surface: "!", POS: "PUNCT"},
				},
			},
		},
	}
}

func TestIngest(t *testing.T) {
	setupDB(t)
	store := newFakeStore()
	ing := NewIngestor(database.NewWordRepository(), store, logger.NewNop())

	summary, err := ing.Ingest(context.Background(), chatEvent())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TokensSeen)
	assert.Equal(t, 1, summary.TokensDropped) // punctuation
	assert.Equal(t, 4, summary.WordsResolved)
	assert.Equal(t, 0, summary.ScoreFailures)

	words, err := database.NewWordRepository().GetOrCreateWords([]database.WordKey{
		{Lemma: "bí", POS: "VERB", Language: "ga"},
		{Lemma: "leabhar", POS: "NOUN", Language: "ga"},
		{Lemma: "an", POS: "DET", Language: "ga"},
		{Lemma: "anseo", POS: "ADV", Language: "ga"},
	})
	require.NoError(t, err)

	scores, err := store.Scores(context.Background(), "client-1", "ga")
	require.NoError(t, err)

	// chat_message base weight 3.0 times the POS multiplier
	verb := words[database.WordKey{Lemma: "bí", POS: "VERB", Language: "ga"}]
	noun := words[database.WordKey{Lemma: "leabhar", POS: "NOUN", Language: "ga"}]
	det := words[database.WordKey{Lemma: "an", POS: "DET", Language: "ga"}]
	adv := words[database.WordKey{Lemma: "anseo", POS: "ADV", Language: "ga"}]

	assert.InDelta(t, 3.0, scores[verb.ID], 1e-9)
	assert.InDelta(t, 3.0, scores[noun.ID], 1e-9)
	assert.InDelta(t, 0.45, scores[det.ID], 1e-9)
	assert.InDelta(t, 2.4, scores[adv.ID], 1e-9)

	seen, err := store.SeenAt(context.Background(), "client-1", "ga")
	require.NoError(t, err)
	assert.Len(t, seen, 4)
}

func TestIngestReplayIsAdditive(t *testing.T) {
	setupDB(t)
	store := newFakeStore()
	ing := NewIngestor(database.NewWordRepository(), store, logger.NewNop())

	_, err := ing.Ingest(context.Background(), chatEvent())
	require.NoError(t, err)
	first, err := store.Scores(context.Background(), "client-1", "ga")
	require.NoError(t, err)

	// same event again: identity is stable, scores double
	summary, err := ing.Ingest(context.Background(), chatEvent())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.WordsResolved)

	second, err := store.Scores(context.Background(), "client-1", "ga")
	require.NoError(t, err)
	assert.Len(t, second, len(first))
	for id, score := range first {
		assert.InDelta(t, 2*score, second[id], 1e-9)
	}
}

func TestIngestDefaultsToPassiveRead(t *testing.T) {
	setupDB(t)
	store := newFakeStore()
	ing := NewIngestor(database.NewWordRepository(), store, logger.NewNop())

	event := chatEvent()
	event.Interaction = nil
	_, err := ing.Ingest(context.Background(), event)
	require.NoError(t, err)

	words, err := database.NewWordRepository().GetOrCreateWords([]database.WordKey{
		{Lemma: "leabhar", POS: "NOUN", Language: "ga"},
	})
	require.NoError(t, err)
	noun := words[database.WordKey{Lemma: "leabhar", POS: "NOUN", Language: "ga"}]

	scores, err := store.Scores(context.Background(), "client-1", "ga")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[noun.ID], 1e-9) // passive_read base weight
}

func TestIngestLemmaFallsBackToSurface(t *testing.T) {
	setupDB(t)
	store := newFakeStore()
	ing := NewIngestor(database.NewWordRepository(), store, logger.NewNop())

	event := Event{
		ClientID: "client-2",
		Language: "ga",
		Sentences: []Sentence{
			{Text: "Madra", Tokens: []Token{{Surface: "Madra", POS: "NOUN"}}},
		},
	}
	_, err := ing.Ingest(context.Background(), event)
	require.NoError(t, err)

	words, err := database.NewWordRepository().GetOrCreateWords([]database.WordKey{
		{Lemma: "madra", POS: "NOUN", Language: "ga"},
	})
	require.NoError(t, err)
	assert.Contains(t, words, database.WordKey{Lemma: "madra", POS: "NOUN", Language: "ga"})
}

func TestIngestInteractionTimestampMarksSeen(t *testing.T) {
	setupDB(t)
	store := newFakeStore()
	ing := NewIngestor(database.NewWordRepository(), store, logger.NewNop())

	at := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	event := chatEvent()
	event.Interaction.Timestamp = &at

	_, err := ing.Ingest(context.Background(), event)
	require.NoError(t, err)

	seen, err := store.SeenAt(context.Background(), "client-1", "ga")
	require.NoError(t, err)
	for _, got := range seen {
		assert.Equal(t, at, got)
	}
}

func TestIngestEmptyEvent(t *testing.T) {
	setupDB(t)
	ing := NewIngestor(database.NewWordRepository(), newFakeStore(), logger.NewNop())

	summary, err := ing.Ingest(context.Background(), Event{ClientID: "c", Language: "ga"})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TokensSeen)
	assert.Equal(t, 0, summary.WordsResolved)
}
