// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is the unit of work triggered on every tick.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// AuditCleanupScheduler triggers audit event cleanup on a cron schedule.
type AuditCleanupScheduler struct {
	schedule string
	job      Job

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a scheduler that calls job on schedule.
func NewAuditCleanupScheduler(schedule string, job Job) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. An empty schedule leaves it disabled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Info().Msg("Audit cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(jobCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.schedule).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("Audit cleanup scheduler: started")

	return nil
}

// Stop stops accepting new ticks and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	s.cancelFunc()
	<-done.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	s.cancelFunc = nil

	log.Info().Msg("Audit cleanup scheduler: stopped")
}

// RunNow triggers the job immediately and returns its error.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	return s.job(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *AuditCleanupScheduler) run(ctx context.Context) {
	start := time.Now()
	if err := s.job(ctx); err != nil {
		log.Error().Err(err).Msg("Audit cleanup failed")
		return
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Audit cleanup triggered")
}
