package database

import (
	"fmt"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// CefrRepository handles database operations for the CEFR word list
type CefrRepository struct{}

// NewCefrRepository creates a new repository instance
func NewCefrRepository() *CefrRepository {
	return &CefrRepository{}
}

// Upsert inserts or replaces the level for a lemma/pos pair
func (r *CefrRepository) Upsert(word *models.CefrWord) error {
	_, err := DB.Exec(`
		INSERT INTO cefr_words (lemma, pos, language, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lemma, pos, language) DO UPDATE SET level = EXCLUDED.level
	`, word.Lemma, word.POS, word.Language, word.Level)
	if err != nil {
		return fmt.Errorf("failed to upsert cefr word: %v", err)
	}
	return nil
}

// GetByLanguage returns the full word list for a language
func (r *CefrRepository) GetByLanguage(language string) ([]models.CefrWord, error) {
	var words []models.CefrWord
	err := DB.Select(&words, `
		SELECT * FROM cefr_words WHERE language = $1 ORDER BY level, lemma
	`, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get cefr words: %v", err)
	}
	return words, nil
}

// Count returns the number of word-list entries for a language
func (r *CefrRepository) Count(language string) (int, error) {
	var count int
	if err := DB.Get(&count, "SELECT COUNT(*) FROM cefr_words WHERE language = $1", language); err != nil {
		return 0, fmt.Errorf("failed to count cefr words: %v", err)
	}
	return count, nil
}
