package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEvents runs one cleanup pass and returns the number of removed events.
func CleanupAuditEvents(ctx context.Context, cleaner AuditEventCleaner, retentionDays int) (int64, error) {
	if cleaner == nil {
		return 0, errors.New("audit event cleaner not configured")
	}
	if retentionDays <= 0 {
		retentionDays = DefaultAuditRetentionDays
	}

	deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		return 0, fmt.Errorf("cleanup audit events: %w", err)
	}

	log.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).Msg("Cleaned up audit events")
	return deleted, nil
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		_, err := CleanupAuditEvents(ctx, cleaner, task.RetentionDays)
		return err
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
