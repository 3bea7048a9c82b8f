package database

import (
	"fmt"
	"strings"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// WordRepository handles database operations for words and word forms
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// WordKey identifies a word row without its id
type WordKey struct {
	Lemma    string
	POS      string
	Language string
}

// GetOrCreateWords inserts any missing words and returns the canonical rows
// keyed by (lemma, pos). Inserts use ON CONFLICT DO NOTHING, so concurrent
// ingestion of the same lemma converges on one row.
func (r *WordRepository) GetOrCreateWords(keys []WordKey) (map[WordKey]models.Word, error) {
	result := make(map[WordKey]models.Word, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	for _, key := range keys {
		_, err := DB.Exec(`
			INSERT INTO words (lemma, pos, language)
			VALUES ($1, $2, $3)
			ON CONFLICT (lemma, pos, language) DO NOTHING
		`, key.Lemma, key.POS, key.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to insert word: %v", err)
		}
	}

	// Reload to pick up canonical ids, including rows created by a
	// concurrent ingestion of the same batch.
	language := keys[0].Language
	placeholders := make([]string, 0, len(keys))
	args := []interface{}{language}
	for _, key := range keys {
		args = append(args, key.Lemma, key.POS)
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", len(args)-1, len(args)))
	}
	query := fmt.Sprintf(`
		SELECT * FROM words
		WHERE language = $1 AND (lemma, pos) IN (%s)
	`, strings.Join(placeholders, ", "))

	var words []models.Word
	if err := DB.Select(&words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to reload words: %v", err)
	}
	for _, w := range words {
		result[WordKey{Lemma: w.Lemma, POS: w.POS, Language: w.Language}] = w
	}
	return result, nil
}

// GetOrCreateForm resolves a surface form for a word, creating it when unseen
func (r *WordRepository) GetOrCreateForm(wordID int64, form, morph string) (*models.WordForm, error) {
	_, err := DB.Exec(`
		INSERT INTO word_forms (word_id, form, morph)
		VALUES ($1, $2, $3)
		ON CONFLICT (word_id, form) DO NOTHING
	`, wordID, form, morph)
	if err != nil {
		return nil, fmt.Errorf("failed to insert word form: %v", err)
	}

	var wf models.WordForm
	err = DB.Get(&wf, `
		SELECT * FROM word_forms WHERE word_id = $1 AND form = $2
	`, wordID, form)
	if err != nil {
		return nil, fmt.Errorf("failed to reload word form: %v", err)
	}
	return &wf, nil
}

// GetByIDs returns words for the given ids, keyed by id
func (r *WordRepository) GetByIDs(ids []int64) (map[int64]models.Word, error) {
	result := make(map[int64]models.Word, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	var words []models.Word
	query := fmt.Sprintf("SELECT * FROM words WHERE id IN (%s)", strings.Join(placeholders, ", "))
	if err := DB.Select(&words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get words by ids: %v", err)
	}
	for _, w := range words {
		result[w.ID] = w
	}
	return result, nil
}
