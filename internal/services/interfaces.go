package services

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CatalogReader provides read-only access to authors and books.
// Use this interface when you only need to query the catalog.
type CatalogReader interface {
	GetAuthor(ctx context.Context, id uint) (*entities.Author, error)
	AuthorExists(ctx context.Context, id uint) (bool, error)
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	ListBooks(ctx context.Context, sortBy catalog.SortKey, search string) ([]entities.Book, error)
	Stats(ctx context.Context) (totalAuthors int64, totalBooks int64, err error)
}

// CatalogWriter persists and removes catalog entries.
type CatalogWriter interface {
	CreateAuthor(ctx context.Context, author *entities.Author) error
	CreateBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, id uint) (catalog.DeleteOutcome, error)
}

// CatalogStore is the full persistence contract of the catalog.
type CatalogStore interface {
	CatalogReader
	CatalogWriter
}

// AuditLogger records catalog mutations. Implementations must not block.
type AuditLogger interface {
	LogCreate(entityType string, entityID uint, description string)
	LogDelete(outcome catalog.DeleteOutcome)
	LogFailure(eventType entities.AuditEventType, entityType string, err error)
}

type nopAuditLogger struct{}

func (nopAuditLogger) LogCreate(string, uint, string)                    {}
func (nopAuditLogger) LogDelete(catalog.DeleteOutcome)                   {}
func (nopAuditLogger) LogFailure(entities.AuditEventType, string, error) {}
