// Package catalog provides database operations for authors and books.
//
// The Repository implements services.CatalogStore and forms.AuthorLookup.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	books, err := repo.ListBooks(ctx, domain.SortByAuthor, "tolkien")
//	outcome, err := repo.DeleteBook(ctx, 42)
package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all author and book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateAuthor persists a new author and assigns its ID.
func (r *Repository) CreateAuthor(ctx context.Context, author *entities.Author) error {
	if err := r.db.WithContext(ctx).Omit("Books").Create(author).Error; err != nil {
		return domain.NewStorageError("create author", err)
	}
	return nil
}

// CreateBook persists a new book. The referenced author is re-checked inside
// the same transaction; a missing author yields a NotFoundError.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Author{}).Where("id = ?", book.AuthorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NewNotFoundError("author", book.AuthorID)
		}
		return tx.Omit("Author").Create(book).Error
	})
	if err == nil {
		return nil
	}
	if domain.IsNotFoundError(err) {
		return err
	}
	return domain.NewStorageError("create book", err)
}

// GetAuthor returns the author with the given ID, or nil when absent.
func (r *Repository) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get author", err)
	}
	return &author, nil
}

// AuthorExists reports whether an author with the given ID exists.
func (r *Repository) AuthorExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Author{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, domain.NewStorageError("check author", err)
	}
	return count > 0, nil
}

// ListAuthors returns all authors ordered by name.
func (r *Repository) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&authors).Error
	if err != nil {
		return nil, domain.NewStorageError("list authors", err)
	}
	return authors, nil
}

// GetBook returns the book with its author, or a NotFoundError.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Preload("Author").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("book", id)
	}
	if err != nil {
		return nil, domain.NewStorageError("get book", err)
	}
	return &book, nil
}

// CountBooksByAuthor returns how many books reference the author.
func (r *Repository) CountBooksByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("author_id = ?", authorID).Count(&count).Error
	if err != nil {
		return 0, domain.NewStorageError("count books", err)
	}
	return count, nil
}

// DeleteBook removes a book and, when it was the author's last one, the author.
// Both deletions happen in one transaction: on any failure neither is applied.
func (r *Repository) DeleteBook(ctx context.Context, id uint) (domain.DeleteOutcome, error) {
	var outcome domain.DeleteOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Preload("Author").First(&book, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("book", id)
		}
		if err != nil {
			return err
		}

		author := book.Author
		outcome = domain.DeleteOutcome{
			Kind:       domain.BookOnlyDeleted,
			BookID:     book.ID,
			BookTitle:  book.Title,
			AuthorID:   book.AuthorID,
			AuthorName: author.Name,
		}

		if err := tx.Delete(&entities.Book{}, book.ID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&entities.Book{}).Where("author_id = ?", book.AuthorID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		if err := tx.Delete(&entities.Author{}, book.AuthorID).Error; err != nil {
			return err
		}
		outcome.Kind = domain.BookAndAuthorDeleted
		return nil
	})
	if err == nil {
		return outcome, nil
	}
	if domain.IsNotFoundError(err) {
		return domain.DeleteOutcome{}, err
	}
	return domain.DeleteOutcome{}, domain.NewStorageError("delete book", err)
}

// ListBooks returns books joined with their authors. A non-empty search keeps
// books whose title or author name contains it (case-insensitive). Sorting is
// by author name for SortByAuthor and by title otherwise.
func (r *Repository) ListBooks(ctx context.Context, sortBy domain.SortKey, search string) ([]entities.Book, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Joins("JOIN authors ON authors.id = books.author_id").
		Preload("Author")

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where(
			`(LOWER(books.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(authors.name) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern,
		)
	}

	if sortBy == domain.SortByAuthor {
		query = query.Order("authors.name ASC, books.title ASC, books.id ASC")
	} else {
		query = query.Order("books.title ASC, books.id ASC")
	}

	var books []entities.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, domain.NewStorageError("list books", err)
	}
	return books, nil
}

// Stats returns total author and book counts.
func (r *Repository) Stats(ctx context.Context) (totalAuthors int64, totalBooks int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&entities.Author{}).Count(&totalAuthors).Error; err != nil {
		return 0, 0, domain.NewStorageError("count authors", err)
	}
	if err = db.Model(&entities.Book{}).Count(&totalBooks).Error; err != nil {
		return 0, 0, domain.NewStorageError("count books", err)
	}
	return totalAuthors, totalBooks, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
