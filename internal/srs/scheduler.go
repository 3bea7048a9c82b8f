// Package srs implements the SM-2 style review scheduler shared by practice
// and flashcard reviews. Both call sites use the same engine; they differ
// only in the policy they hand it.
package srs

import (
	"math"
	"time"

	"github.com/decyphr-net/practice-engine/pkg/models"
)

// Grade classifies one review outcome
type Grade int

const (
	GradeAgain Grade = iota
	GradeGood
	GradeEasy
)

func (g Grade) String() string {
	switch g {
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	}
	return "again"
}

// GradeFromScore derives the scheduling grade from a grading score
func GradeFromScore(score int) Grade {
	switch {
	case score >= 100:
		return GradeEasy
	case score >= 85:
		return GradeGood
	}
	return GradeAgain
}

// Policy is the value object that tunes the scheduling curve. Practice and
// flashcards share the formulas; flashcards simply turn dampening off.
type Policy struct {
	AgainPenalty      float64
	GoodBonus         float64
	EasyBonus         float64
	EasyIntervalBoost float64
	MinEase           float64
	MaxEase           float64
	// WeaknessDampening shortens good/easy intervals for profiles with a
	// poor recent track record
	WeaknessDampening bool
}

// PracticePolicy is the policy used for phrase practice
func PracticePolicy() Policy {
	return Policy{
		AgainPenalty:      0.2,
		GoodBonus:         0.05,
		EasyBonus:         0.15,
		EasyIntervalBoost: 0.35,
		MinEase:           1.3,
		MaxEase:           3.0,
		WeaknessDampening: true,
	}
}

// FlashcardPolicy is the same curve without weakness dampening
func FlashcardPolicy() Policy {
	p := PracticePolicy()
	p.WeaknessDampening = false
	return p
}

// Scheduler computes the next review state from a grade
type Scheduler struct {
	policy Policy
	now    func() time.Time
}

// New creates a scheduler for the given policy
func New(policy Policy) *Scheduler {
	return &Scheduler{policy: policy, now: time.Now}
}

// NewAt creates a scheduler with a fixed clock, for tests
func NewAt(policy Policy, now func() time.Time) *Scheduler {
	return &Scheduler{policy: policy, now: now}
}

// Weakness derives a [0, 1] signal from the profile's track record: the
// lapse ratio plus a penalty for having no active streak. High weakness
// means denser repetition.
func Weakness(p *models.PracticeProfile) float64 {
	w := float64(p.LapseCount+1) / float64(p.ReviewCount+2)
	if p.ConsecutiveCorrect == 0 {
		w += 0.12
	}
	return clamp(w, 0, 1)
}

// Apply mutates the profile's scheduling state for one graded review
func (s *Scheduler) Apply(p *models.PracticeProfile, grade Grade) {
	now := s.now()
	// weakness reflects the track record before this review
	weakness := Weakness(p)

	p.ReviewCount++
	p.LastReviewedAt = &now

	switch grade {
	case GradeAgain:
		p.EaseFactor = s.clampEase(p.EaseFactor - s.policy.AgainPenalty)
		p.IntervalDays = 0
		p.ConsecutiveCorrect = 0
		p.LapseCount++
		// 3-5 minute cooldown, tighter for weak profiles
		cooldown := 5*time.Minute - time.Duration(weakness*2*float64(time.Minute))
		p.DueAt = now.Add(cooldown)
		return

	case GradeGood:
		previousEase := p.EaseFactor
		p.EaseFactor = s.clampEase(p.EaseFactor + s.policy.GoodBonus)
		switch {
		case p.IntervalDays <= 0:
			p.IntervalDays = 1
		case p.IntervalDays == 1:
			p.IntervalDays = 3
		default:
			p.IntervalDays = int(math.Round(float64(p.IntervalDays) * previousEase))
		}
		p.ConsecutiveCorrect++

	case GradeEasy:
		previousEase := p.EaseFactor
		p.EaseFactor = s.clampEase(p.EaseFactor + s.policy.EasyBonus)
		if p.IntervalDays <= 0 {
			p.IntervalDays = 3
		} else {
			p.IntervalDays = int(math.Round(float64(p.IntervalDays) * (previousEase + s.policy.EasyIntervalBoost)))
		}
		p.ConsecutiveCorrect++
	}

	if s.policy.WeaknessDampening {
		dampened := int(math.Round(float64(p.IntervalDays) * (1 - weakness*0.5)))
		if dampened < 1 {
			dampened = 1
		}
		p.IntervalDays = dampened
	}
	if p.IntervalDays < 1 {
		p.IntervalDays = 1
	}

	p.DueAt = nextMidnight(now).AddDate(0, 0, p.IntervalDays)
}

func (s *Scheduler) clampEase(ease float64) float64 {
	return clamp(ease, s.policy.MinEase, s.policy.MaxEase)
}

// nextMidnight returns the next local midnight after t
func nextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
