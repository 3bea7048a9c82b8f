package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

func TestGradeTextExactMatch(t *testing.T) {
	res := GradeText(models.ExerciseTypedTranslation, "Dia dhuit", "dia dhuit!")
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, MethodExact, res.Method)
}

func TestGradeTextAccentFold(t *testing.T) {
	res := GradeText(models.ExerciseTypedTranslation, "Tá mé go maith", "ta me go maith")
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, MethodAccentFold, res.Method)
}

func TestGradeTextTypoTolerance(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		user     string
		score    int
		method   string
	}{
		{
			name:     "one edit on a medium word",
			expected: "leabhar",
			user:     "leabhair",
			score:    85,
			method:   MethodTypo,
		},
		{
			name:     "no slack on short words",
			expected: "bord",
			user:     "borde",
			score:    0,
			method:   MethodNone,
		},
		{
			name:     "two edits on a long answer",
			expected: "an bhfuil cead agam dul amach",
			user:     "an bhfuil cead agam dul amch",
			score:    85,
			method:   MethodTypo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := GradeText(models.ExerciseTypedTranslation, tt.expected, tt.user)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.method, res.Method)
		})
	}
}

func TestGradeTextStructuralMatch(t *testing.T) {
	// English expected answers get paraphrase slack on typed translations
	res := GradeText(models.ExerciseTypedTranslation, "the book is on the table", "a book on a table")
	assert.Equal(t, 80, res.Score)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, MethodStructural, res.Method)
}

func TestGradeTextNoStructuralSlackForCloze(t *testing.T) {
	// same pair that passes structurally as a translation fails as a cloze
	res := GradeText(models.ExerciseCloze, "the book is on the table", "a book on a table")
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, MethodNone, res.Method)
}

func TestGradeTextWrongAnswer(t *testing.T) {
	res := GradeText(models.ExerciseTypedTranslation, "leabhar", "capall")
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, MethodNone, res.Method)
}

func TestGradeTextEmptyUserAnswer(t *testing.T) {
	res := GradeText(models.ExerciseTypedTranslation, "leabhar", "")
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsCorrect)
}

func TestGradeTextDeterministic(t *testing.T) {
	first := GradeText(models.ExerciseTypedTranslation, "Tá mé go maith", "ta me go mait")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GradeText(models.ExerciseTypedTranslation, "Tá mé go maith", "ta me go mait"))
	}
}

func TestGradeTokens(t *testing.T) {
	expected := []string{"Tá", "mé", "go", "maith"}

	t.Run("correct order", func(t *testing.T) {
		res := GradeTokens(expected, []string{"tá", "mé", "go", "maith"})
		assert.Equal(t, 100, res.Score)
		assert.True(t, res.IsCorrect)
		assert.Equal(t, MethodOrdered, res.Method)
	})

	t.Run("swapped tokens fail", func(t *testing.T) {
		res := GradeTokens(expected, []string{"mé", "tá", "go", "maith"})
		assert.Equal(t, 0, res.Score)
		assert.False(t, res.IsCorrect)
	})

	t.Run("missing token fails", func(t *testing.T) {
		res := GradeTokens(expected, []string{"tá", "mé", "go"})
		assert.False(t, res.IsCorrect)
	})

	t.Run("punctuation tokens are ignored", func(t *testing.T) {
		res := GradeTokens(
			[]string{"Dia", "dhuit", "!"},
			[]string{"dia", "dhuit"},
		)
		assert.True(t, res.IsCorrect)
	})

	t.Run("empty submission fails", func(t *testing.T) {
		res := GradeTokens(expected, nil)
		assert.False(t, res.IsCorrect)
	})
}

func TestTypoThreshold(t *testing.T) {
	assert.Equal(t, 0, typoThreshold(3))
	assert.Equal(t, 0, typoThreshold(5))
	assert.Equal(t, 1, typoThreshold(6))
	assert.Equal(t, 1, typoThreshold(12))
	assert.Equal(t, 2, typoThreshold(13))
}

func TestDepluralize(t *testing.T) {
	assert.Equal(t, "story", depluralize("stories"))
	assert.Equal(t, "book", depluralize("books"))
	assert.Equal(t, "glass", depluralize("glass"))
	assert.Equal(t, "is", depluralize("is"))
}
