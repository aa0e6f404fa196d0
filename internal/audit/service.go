package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const maxMessageLength = 500

// Service provides high-level audit logging for catalog mutations.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("Failed to log audit event")
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogCreate records the creation of an author or book.
func (s *Service) LogCreate(entityType string, entityID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventCreate,
		Action:      entityType + "_create",
		Description: truncate("Created "+entityType+": "+description, maxMessageLength),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDelete records a book deletion and, for a cascade, the removal of its author.
func (s *Service) LogDelete(outcome catalog.DeleteOutcome) {
	bookID := outcome.BookID
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "book_delete",
		Description: truncate("Deleted book: "+outcome.BookTitle, maxMessageLength),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})

	if !outcome.AuthorDeleted() {
		return
	}

	authorID := outcome.AuthorID
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "author_cascade_delete",
		Description: truncate("Deleted author with no remaining books: "+outcome.AuthorName, maxMessageLength),
		EntityType:  "author",
		EntityID:    &authorID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogFailure records a mutation that failed in the store.
func (s *Service) LogFailure(eventType entities.AuditEventType, entityType string, err error) {
	s.LogAsync(&entities.AuditEvent{
		EventType:  eventType,
		Action:     entityType + "_" + string(eventType),
		EntityType: entityType,
		Status:     entities.AuditStatusFailed,
		ErrorMsg:   truncate(err.Error(), maxMessageLength),
	})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, entityType string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, entityType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
