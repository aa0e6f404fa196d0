package services

import (
	"context"
	"errors"
	"time"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/forms"
)

const (
	MsgAuthorAdded   = "Author added successfully!"
	MsgBookAdded     = "Book added successfully!"
	MsgBookNotFound  = "Book not found."
	MsgAuthorMissing = "Author not found."
)

// storageMessagePrefixes maps a failed store operation to the prefix shown
// to the user in front of the underlying cause.
var storageMessagePrefixes = map[string]string{
	"create author": "Error adding author: ",
	"create book":   "Error adding book: ",
	"delete book":   "Error deleting book: ",
}

// BookList is the result of a listing request.
type BookList struct {
	Books    []entities.Book `json:"books"`
	SortBy   catalog.SortKey `json:"sort_by"`
	Search   string          `json:"search_query"`
	Advisory string          `json:"advisory,omitempty"`
}

// CatalogService validates input and coordinates catalog mutations,
// recording each one in the audit log.
type CatalogService struct {
	store     CatalogStore
	validator *forms.Validator
	audit     AuditLogger
}

// NewCatalogService creates a catalog service. auditLogger may be nil;
// now defaults to time.Now.
func NewCatalogService(store CatalogStore, auditLogger AuditLogger, now func() time.Time) *CatalogService {
	if auditLogger == nil {
		auditLogger = nopAuditLogger{}
	}
	return &CatalogService{
		store:     store,
		validator: forms.NewValidator(now),
		audit:     auditLogger,
	}
}

// AddAuthor validates fields and persists a new author.
func (s *CatalogService) AddAuthor(ctx context.Context, fields forms.Fields) (*entities.Author, error) {
	errs, input := s.validator.Author(fields)
	if len(errs) > 0 {
		return nil, catalog.NewValidationError(errs)
	}

	author := &entities.Author{
		Name:        input.Name,
		BirthDate:   input.BirthDate,
		DateOfDeath: input.DateOfDeath,
	}
	if err := s.store.CreateAuthor(ctx, author); err != nil {
		s.audit.LogFailure(entities.AuditEventCreate, "author", err)
		return nil, err
	}

	s.audit.LogCreate("author", author.ID, author.String())
	return author, nil
}

// AddBook validates fields, including the author reference, and persists a new book.
func (s *CatalogService) AddBook(ctx context.Context, fields forms.Fields) (*entities.Book, error) {
	errs, input := s.validator.Book(ctx, fields, s.store)
	if len(errs) > 0 {
		return nil, catalog.NewValidationError(errs)
	}

	book := &entities.Book{
		Title:           input.Title,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		AuthorID:        input.AuthorID,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		s.audit.LogFailure(entities.AuditEventCreate, "book", err)
		return nil, err
	}

	if author, err := s.store.GetAuthor(ctx, book.AuthorID); err == nil && author != nil {
		book.Author = *author
	}

	s.audit.LogCreate("book", book.ID, book.String())
	return book, nil
}

// ListBooks returns the catalog sorted and filtered. An empty result for a
// non-empty search carries the no-matches advisory.
func (s *CatalogService) ListBooks(ctx context.Context, sortBy, search string) (BookList, error) {
	key := catalog.ParseSortKey(sortBy)
	books, err := s.store.ListBooks(ctx, key, search)
	if err != nil {
		return BookList{}, err
	}

	list := BookList{Books: books, SortBy: key, Search: search}
	if len(books) == 0 && search != "" {
		list.Advisory = catalog.NoMatchesAdvisory
	}
	return list, nil
}

// DeleteBook deletes a book, cascading to its author when it was the last one.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint) (catalog.DeleteOutcome, error) {
	outcome, err := s.store.DeleteBook(ctx, id)
	if err != nil {
		if catalog.IsStorageError(err) {
			s.audit.LogFailure(entities.AuditEventDelete, "book", err)
		}
		return catalog.DeleteOutcome{}, err
	}

	s.audit.LogDelete(outcome)
	return outcome, nil
}

// Authors returns every author, ordered by name.
func (s *CatalogService) Authors(ctx context.Context) ([]entities.Author, error) {
	return s.store.ListAuthors(ctx)
}

// Author returns the author with the given ID, or nil when absent.
func (s *CatalogService) Author(ctx context.Context, id uint) (*entities.Author, error) {
	return s.store.GetAuthor(ctx, id)
}

// Stats returns the number of authors and books in the catalog.
func (s *CatalogService) Stats(ctx context.Context) (int64, int64, error) {
	return s.store.Stats(ctx)
}

// Message renders the single user-visible message for a failed operation.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		if notFound.Entity == "author" {
			return forms.MsgAuthorDoesNotExist
		}
		return MsgBookNotFound
	}

	var storageErr *catalog.StorageError
	if errors.As(err, &storageErr) {
		if prefix, ok := storageMessagePrefixes[storageErr.Op]; ok {
			return prefix + storageErr.Err.Error()
		}
		return "Error: " + storageErr.Err.Error()
	}

	return err.Error()
}

// Messages returns every message to show for err: one per violation for a
// validation failure, otherwise the single Message.
func Messages(err error) []string {
	if msgs := catalog.ValidationMessages(err); len(msgs) > 0 {
		return msgs
	}
	if err == nil {
		return nil
	}
	return []string{Message(err)}
}
