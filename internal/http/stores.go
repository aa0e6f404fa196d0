package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/flash"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/services"
)

// This file consolidates the interfaces HTTP controllers depend on.
// services.CatalogService, flash.Manager, audit.Service and tasks.Client
// satisfy them in production; tests substitute fakes where needed.

// CatalogReader lists books and authors.
type CatalogReader interface {
	ListBooks(ctx context.Context, sortBy, search string) (services.BookList, error)
	Authors(ctx context.Context) ([]entities.Author, error)
	Author(ctx context.Context, id uint) (*entities.Author, error)
	Stats(ctx context.Context) (int64, int64, error)
}

// CatalogWriter validates and applies catalog mutations.
type CatalogWriter interface {
	AddAuthor(ctx context.Context, fields forms.Fields) (*entities.Author, error)
	AddBook(ctx context.Context, fields forms.Fields) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) (catalog.DeleteOutcome, error)
}

// Catalog is the full catalog service used by the UI and API controllers.
type Catalog interface {
	CatalogReader
	CatalogWriter
}

// Flasher queues and drains one-shot messages for the next rendered page.
type Flasher interface {
	Add(ctx context.Context, category, text string)
	AddAll(ctx context.Context, category string, texts []string)
	Pop(ctx context.Context) []flash.Message
}

// AuditReader exposes the audit trail.
type AuditReader interface {
	GetEvents(ctx context.Context, entityType string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// nopFlasher drops messages when no session store is configured.
type nopFlasher struct{}

func (nopFlasher) Add(context.Context, string, string)      {}
func (nopFlasher) AddAll(context.Context, string, []string) {}
func (nopFlasher) Pop(context.Context) []flash.Message      { return nil }
