// Package scheduler runs the background jobs of the engine. Today that is a
// single job: periodically recomputing the per-client accuracy aggregates
// that back the progress endpoint.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/logger"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	attempts  *database.AttemptRepository
	stats     *database.StatsRepository
	interval  time.Duration
	log       *logger.Logger
}

// New creates a new scheduler instance
func New(attempts *database.AttemptRepository, stats *database.StatsRepository, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		attempts:  attempts,
		stats:     stats,
		interval:  interval,
		log:       log.With("service", "Scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(s.interval).Do(s.recomputeStats)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// recomputeStats rebuilds the all-time accuracy aggregates for every client
// with attempt history. Each upsert is idempotent, so a failed run leaves
// the previous aggregates in place and the next run repairs them.
func (s *Scheduler) recomputeStats() {
	clients, err := s.attempts.ActiveClients()
	if err != nil {
		s.log.Error("failed to list active clients", "error", err)
		return
	}

	for _, clientID := range clients {
		rows, err := s.attempts.AccuracyByType(clientID, time.Time{}, time.Time{})
		if err != nil {
			s.log.Error("failed to aggregate accuracy", "clientId", clientID, "error", err)
			continue
		}
		for _, row := range rows {
			if err := s.stats.Upsert(clientID, row); err != nil {
				s.log.Error("failed to upsert stats", "clientId", clientID, "exerciseType", row.ExerciseType, "error", err)
			}
		}
	}
}

// RunOnce forces an immediate recompute, used at startup so the progress
// endpoint has fresh aggregates before the first tick
func (s *Scheduler) RunOnce() {
	s.recomputeStats()
}
