package http

import (
	"context"
	"errors"
	"html/template"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	catalogdb "github.com/mrlokans/bookshelf/internal/database/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/flash"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/services"
)

const testTemplates = `
{{define "flashes"}}{{range .Flashes}}<p class="flash-{{.Category}}">{{.Text}}</p>{{end}}{{end}}
{{define "home"}}{{template "flashes" .}}<div>sort={{.SortBy}} search={{.SearchQuery}} authors={{.TotalAuthors}} books={{.TotalBooks}} readonly={{.ReadOnly}}</div>
<ul>{{range .Books}}<li>{{.Title}} | {{.Author.Name}} | {{year .PublicationYear}}</li>{{end}}</ul>{{end}}
{{define "add_author"}}{{template "flashes" .}}<form method="post">{{.CSRFField}}</form>{{end}}
{{define "add_book"}}{{template "flashes" .}}<select>{{range .Authors}}<option value="{{.ID}}">{{.Name}}</option>{{end}}</select>{{.CSRFField}}{{end}}
`

func testTemplateSet(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := ParseTemplates(testTemplates)
	require.NoError(t, err)
	return tmpl
}

var fixedNow = func() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func setupCatalog(t *testing.T) (*services.CatalogService, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return services.NewCatalogService(catalogdb.NewRepository(db.DB), nil, fixedNow), db
}

func addAuthor(t *testing.T, svc *services.CatalogService, name string) *entities.Author {
	t.Helper()
	author, err := svc.AddAuthor(context.Background(), forms.Fields{forms.FieldName: name})
	require.NoError(t, err)
	return author
}

func addBook(t *testing.T, svc *services.CatalogService, title, isbn string, authorID uint) *entities.Book {
	t.Helper()
	book, err := svc.AddBook(context.Background(), forms.Fields{
		forms.FieldTitle:    title,
		forms.FieldISBN:     isbn,
		forms.FieldAuthorID: strconv.FormatUint(uint64(authorID), 10),
	})
	require.NoError(t, err)
	return book
}

// memoryFlasher keeps flashed messages in memory across requests.
type memoryFlasher struct {
	mu       sync.Mutex
	messages []flash.Message
}

func (f *memoryFlasher) Add(_ context.Context, category, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, flash.Message{Category: category, Text: text})
}

func (f *memoryFlasher) AddAll(ctx context.Context, category string, texts []string) {
	for _, text := range texts {
		f.Add(ctx, category, text)
	}
}

func (f *memoryFlasher) Pop(context.Context) []flash.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := f.messages
	f.messages = nil
	return messages
}

func (f *memoryFlasher) texts(category string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, m := range f.messages {
		if m.Category == category {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

var errDiskFull = errors.New("disk I/O error")

// brokenCatalog fails every call with a storage error.
type brokenCatalog struct {
	Catalog
}

func (brokenCatalog) ListBooks(context.Context, string, string) (services.BookList, error) {
	return services.BookList{}, catalog.NewStorageError("list books", errDiskFull)
}

func (brokenCatalog) Authors(context.Context) ([]entities.Author, error) {
	return nil, catalog.NewStorageError("list authors", errDiskFull)
}

func (brokenCatalog) Author(context.Context, uint) (*entities.Author, error) {
	return nil, catalog.NewStorageError("get author", errDiskFull)
}

func (brokenCatalog) Stats(context.Context) (int64, int64, error) {
	return 0, 0, catalog.NewStorageError("stats", errDiskFull)
}

func (brokenCatalog) AddAuthor(context.Context, forms.Fields) (*entities.Author, error) {
	return nil, catalog.NewStorageError("create author", errDiskFull)
}

func (brokenCatalog) DeleteBook(context.Context, uint) (catalog.DeleteOutcome, error) {
	return catalog.DeleteOutcome{}, catalog.NewStorageError("delete book", errDiskFull)
}
