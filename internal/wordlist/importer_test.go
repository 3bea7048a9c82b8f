package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decyphr-net/practice-engine/internal/database"
)

func setupDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { _ = database.Close() })
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportWordListCSV(t *testing.T) {
	setupDB(t)
	path := writeCSV(t, "lemma,pos,level\n"+
		"leabhar,NOUN,A1\n"+
		"bí,VERB,A1\n"+
		"madra,noun,a2\n")

	result, err := ImportWordList(DefaultImportConfig(path, "ga"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.Errors)

	words, err := database.NewCefrRepository().GetByLanguage("ga")
	require.NoError(t, err)
	require.Len(t, words, 3)

	// case is normalized on the way in
	byLemma := make(map[string]string)
	for _, w := range words {
		byLemma[w.Lemma] = w.Level
	}
	assert.Equal(t, "A2", byLemma["madra"])
	assert.Equal(t, "A1", byLemma["leabhar"])
}

func TestImportWordListInvalidLevel(t *testing.T) {
	setupDB(t)
	path := writeCSV(t, "lemma,pos,level\n"+
		"leabhar,NOUN,A1\n"+
		"capall,NOUN,Z9\n")

	result, err := ImportWordList(DefaultImportConfig(path, "ga"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "invalid CEFR level")

	count, err := database.NewCefrRepository().Count("ga")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportWordListBlankLemmaSkipped(t *testing.T) {
	setupDB(t)
	path := writeCSV(t, "lemma,pos,level\n"+
		",NOUN,A1\n"+
		"leabhar,NOUN,A1\n")

	result, err := ImportWordList(DefaultImportConfig(path, "ga"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestImportWordListReimportIsIdempotent(t *testing.T) {
	setupDB(t)
	path := writeCSV(t, "lemma,pos,level\nleabhar,NOUN,A1\n")
	cfg := DefaultImportConfig(path, "ga")

	_, err := ImportWordList(cfg)
	require.NoError(t, err)
	_, err = ImportWordList(cfg)
	require.NoError(t, err)

	count, err := database.NewCefrRepository().Count("ga")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportWordListRequiresLanguage(t *testing.T) {
	cfg := DefaultImportConfig("whatever.csv", "")
	_, err := ImportWordList(cfg)
	require.Error(t, err)
}
