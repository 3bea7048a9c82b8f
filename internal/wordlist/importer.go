// Package wordlist imports CEFR reference word lists from Excel or CSV
// files into the cefr_words table.
package wordlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath    string // Path to the Excel or CSV file
	Language    string // Language code the list belongs to
	LemmaColumn string // Column with the lemma
	POSColumn   string // Column with the part-of-speech tag
	LevelColumn string // Column with the CEFR level
	SheetName   string // Name of the sheet to import
	StartRow    int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(filePath, language string) ImportConfig {
	return ImportConfig{
		FilePath:    filePath,
		Language:    language,
		LemmaColumn: "A",
		POSColumn:   "B",
		LevelColumn: "C",
		SheetName:   "Sheet1",
		StartRow:    2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

var validLevels = map[string]bool{
	"A1": true, "A2": true, "B1": true, "B2": true, "C1": true, "C2": true,
}

// ImportWordList imports a CEFR word list from an Excel or CSV file
func ImportWordList(config ImportConfig) (*ImportResult, error) {
	if config.Language == "" {
		return nil, fmt.Errorf("language is required for word list import")
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(config)
	}
	return importFromExcel(config)
}

// importFromExcel imports entries from an Excel file
func importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	repo := database.NewCefrRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		var lemma, pos, level string
		if colIdx := columnToIndex(config.LemmaColumn); colIdx < len(row) {
			lemma = row[colIdx]
		}
		if colIdx := columnToIndex(config.POSColumn); colIdx < len(row) {
			pos = row[colIdx]
		}
		if colIdx := columnToIndex(config.LevelColumn); colIdx < len(row) {
			level = row[colIdx]
		}

		if err := processEntry(repo, config.Language, lemma, pos, level, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports entries from a CSV file laid out lemma,pos,level
func importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	repo := database.NewCefrRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		var lemma, pos, level string
		if len(row) > 0 {
			lemma = row[0]
		}
		if len(row) > 1 {
			pos = row[1]
		}
		if len(row) > 2 {
			level = row[2]
		}

		if err := processEntry(repo, config.Language, lemma, pos, level, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processEntry validates and upserts a single word-list entry
func processEntry(repo *database.CefrRepository, language, lemma, pos, level string, result *ImportResult) error {
	lemma = strings.ToLower(strings.TrimSpace(lemma))
	pos = strings.ToUpper(strings.TrimSpace(pos))
	level = strings.ToUpper(strings.TrimSpace(level))

	if lemma == "" {
		result.Skipped++
		return nil
	}
	if !validLevels[level] {
		result.Skipped++
		return fmt.Errorf("invalid CEFR level %q for lemma %q", level, lemma)
	}
	if pos == "" {
		pos = "NOUN"
	}

	entry := &models.CefrWord{
		Lemma:    lemma,
		POS:      pos,
		Language: language,
		Level:    level,
	}
	if err := repo.Upsert(entry); err != nil {
		return fmt.Errorf("failed to upsert entry: %v", err)
	}
	result.Imported++
	return nil
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
