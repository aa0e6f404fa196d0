package catalog

import (
	"fmt"
	"strings"
)

// SortKey selects the ordering of book listings.
type SortKey string

const (
	SortByTitle  SortKey = "title"
	SortByAuthor SortKey = "author"
)

// ParseSortKey maps a query value to a SortKey. Unknown values sort by title.
func ParseSortKey(s string) SortKey {
	if SortKey(strings.TrimSpace(s)) == SortByAuthor {
		return SortByAuthor
	}
	return SortByTitle
}

// DeleteKind tags what a book deletion removed.
type DeleteKind string

const (
	BookOnlyDeleted      DeleteKind = "book_only"
	BookAndAuthorDeleted DeleteKind = "book_and_author"
)

// DeleteOutcome reports the result of deleting a book. AuthorName is set
// whenever the author was captured, and is the deleted author's name for
// BookAndAuthorDeleted.
type DeleteOutcome struct {
	Kind       DeleteKind `json:"outcome"`
	BookID     uint       `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	AuthorID   uint       `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
}

// AuthorDeleted reports whether the cascade removed the author as well.
func (o DeleteOutcome) AuthorDeleted() bool {
	return o.Kind == BookAndAuthorDeleted
}

// Message is the user-facing confirmation for the outcome.
func (o DeleteOutcome) Message() string {
	if o.AuthorDeleted() {
		return fmt.Sprintf("Book and its author '%s' have been deleted.", o.AuthorName)
	}
	return "Book has been deleted."
}

// NoMatchesAdvisory is shown when a non-empty search returns no books.
const NoMatchesAdvisory = "No books match the search criteria."
