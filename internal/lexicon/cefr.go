package lexicon

import (
	"context"
	"fmt"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// Levels in promotion order
var cefrLevels = []string{"A1", "A2", "B1", "B2", "C1"}

// masteryThreshold is the raw score at which a word counts as mastered
const masteryThreshold = 10.0

// Promotion thresholds decrease at higher levels: mastering a third of the
// C1 list says more than mastering a third of the A1 list.
var promotionThresholds = map[string]float64{
	"A1": 0.60,
	"A2": 0.50,
	"B1": 0.45,
	"B2": 0.40,
	"C1": 0.35,
}

// Signal cutoffs on verb and function-word mastery ratios
const (
	strongVerbRatio    = 0.5
	weakVerbRatio      = 0.2
	strongFunctionWord = 0.5
	weakFunctionWord   = 0.2
)

// Assessor infers a CEFR level from word-level mastery coverage
type Assessor struct {
	cefr   *database.CefrRepository
	words  *database.WordRepository
	engine *DecayEngine
}

// NewAssessor creates an assessor
func NewAssessor(cefr *database.CefrRepository, words *database.WordRepository, engine *DecayEngine) *Assessor {
	return &Assessor{cefr: cefr, words: words, engine: engine}
}

// Assess computes per-level coverage and infers the learner's level. Levels
// are walked A1 to C1; the last level whose coverage meets its promotion
// threshold wins. Inference is monotonic: coverage never decreasing means
// the level never decreases.
func (a *Assessor) Assess(ctx context.Context, clientID, lang string) (*models.CefrAssessment, error) {
	wordList, err := a.cefr.GetByLanguage(lang)
	if err != nil {
		return nil, err
	}

	snapshot, err := a.engine.Snapshot(ctx, clientID, lang)
	if err != nil {
		return nil, err
	}
	rawByKey := make(map[string]float64, len(snapshot))
	for _, ws := range snapshot {
		rawByKey[scoreKey(ws.Lemma, ws.POS)] = ws.RawScore
	}

	coverage := make([]models.CefrCoverage, 0, len(cefrLevels))
	byLevel := make(map[string]*models.CefrCoverage, len(cefrLevels))
	for _, level := range cefrLevels {
		coverage = append(coverage, models.CefrCoverage{Level: level})
		byLevel[level] = &coverage[len(coverage)-1]
	}

	var verbTotal, verbMastered, functionTotal, functionMastered float64
	for _, entry := range wordList {
		cov, ok := byLevel[entry.Level]
		if !ok {
			continue
		}
		weight := POSMultiplier(entry.POS)
		cov.TotalWeight += weight

		mastered := rawByKey[scoreKey(entry.Lemma, entry.POS)] >= masteryThreshold
		if mastered {
			cov.MasteredWeight += weight
		}

		switch {
		case entry.POS == "VERB":
			verbTotal++
			if mastered {
				verbMastered++
			}
		case POSMultiplier(entry.POS) < 0.5:
			functionTotal++
			if mastered {
				functionMastered++
			}
		}
	}

	for i := range coverage {
		if coverage[i].TotalWeight > 0 {
			coverage[i].Coverage = coverage[i].MasteredWeight / coverage[i].TotalWeight
		}
	}

	level := cefrLevels[0]
	confidence := 0.0
	for _, cov := range coverage {
		threshold := promotionThresholds[cov.Level]
		if cov.TotalWeight == 0 || cov.Coverage < threshold {
			break
		}
		level = cov.Level
		// how far past the bar the level sits, capped at 1
		confidence = clampUnit(cov.Coverage / threshold / 2)
	}

	assessment := &models.CefrAssessment{
		Level:      level,
		Confidence: confidence,
		Coverage:   coverage,
		Signals:    buildSignals(verbMastered, verbTotal, functionMastered, functionTotal),
	}
	return assessment, nil
}

func buildSignals(verbMastered, verbTotal, functionMastered, functionTotal float64) []string {
	signals := []string{}
	if verbTotal > 0 {
		ratio := verbMastered / verbTotal
		switch {
		case ratio >= strongVerbRatio:
			signals = append(signals, fmt.Sprintf("strong verb mastery (%.0f%% of listed verbs)", ratio*100))
		case ratio < weakVerbRatio:
			signals = append(signals, "verb coverage lags the rest of the vocabulary")
		}
	}
	if functionTotal > 0 {
		ratio := functionMastered / functionTotal
		switch {
		case ratio >= strongFunctionWord:
			signals = append(signals, "function words are well established")
		case ratio < weakFunctionWord:
			signals = append(signals, "grammar words need more exposure")
		}
	}
	return signals
}

func scoreKey(lemma, pos string) string {
	return lemma + "|" + pos
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
