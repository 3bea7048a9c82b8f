package lexicon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/decyphr-net/practice-engine/internal/database"
)

// fakeStore is an in-memory scorestore.Store for tests
type fakeStore struct {
	scores map[string]map[int64]float64
	seen   map[string]map[int64]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores: make(map[string]map[int64]float64),
		seen:   make(map[string]map[int64]time.Time),
	}
}

func storeKey(clientID, lang string) string {
	return clientID + "|" + lang
}

func (f *fakeStore) Add(_ context.Context, clientID, lang string, wordID int64, delta float64) error {
	k := storeKey(clientID, lang)
	if f.scores[k] == nil {
		f.scores[k] = make(map[int64]float64)
	}
	f.scores[k][wordID] += delta
	return nil
}

func (f *fakeStore) MarkSeen(_ context.Context, clientID, lang string, wordID int64, at time.Time) error {
	k := storeKey(clientID, lang)
	if f.seen[k] == nil {
		f.seen[k] = make(map[int64]time.Time)
	}
	f.seen[k][wordID] = at
	return nil
}

func (f *fakeStore) Scores(_ context.Context, clientID, lang string) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for id, s := range f.scores[storeKey(clientID, lang)] {
		out[id] = s
	}
	return out, nil
}

func (f *fakeStore) SeenAt(_ context.Context, clientID, lang string) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time)
	for id, at := range f.seen[storeKey(clientID, lang)] {
		out[id] = at
	}
	return out, nil
}

// setupDB connects the package-global database handle to a throwaway sqlite
// file for the duration of one test
func setupDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { _ = database.Close() })
}
