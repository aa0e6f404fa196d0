package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/services"
)

func newAPIRouter(c Catalog) *gin.Engine {
	controller := NewCatalogAPIController(c)

	router := gin.New()
	router.GET("/api/books", controller.ListBooks)
	router.POST("/api/books", controller.CreateBook)
	router.GET("/api/authors", controller.ListAuthors)
	router.POST("/api/authors", controller.CreateAuthor)
	router.GET("/api/authors/:id", controller.GetAuthor)
	router.GET("/api/stats", controller.GetStats)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

type listBooksResponse struct {
	Books       []entities.Book `json:"books"`
	Count       int             `json:"count"`
	SortBy      string          `json:"sort_by"`
	SearchQuery string          `json:"search_query"`
	Advisory    string          `json:"advisory"`
}

func TestCatalogAPI_ListBooks(t *testing.T) {
	t.Run("returns books with authors", func(t *testing.T) {
		svc, _ := setupCatalog(t)
		herbert := addAuthor(t, svc, "Frank Herbert")
		addBook(t, svc, "Dune", "9780441013593", herbert.ID)

		w := get(newAPIRouter(svc), "/api/books?sort_by=author")
		require.Equal(t, http.StatusOK, w.Code)

		var resp listBooksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "author", resp.SortBy)
		require.Len(t, resp.Books, 1)
		assert.Equal(t, "Dune", resp.Books[0].Title)
		assert.Equal(t, "Frank Herbert", resp.Books[0].Author.Name)
		assert.Empty(t, resp.Advisory)
	})

	t.Run("unknown sort key falls back to title", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := get(newAPIRouter(svc), "/api/books?sort_by=publication_year")

		var resp listBooksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(catalog.SortByTitle), resp.SortBy)
	})

	t.Run("empty search result carries advisory", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := get(newAPIRouter(svc), "/api/books?search_query=nothing")
		require.Equal(t, http.StatusOK, w.Code)

		var resp listBooksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Books)
		assert.Equal(t, catalog.NoMatchesAdvisory, resp.Advisory)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		w := get(newAPIRouter(brokenCatalog{}), "/api/books")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCatalogAPI_Authors(t *testing.T) {
	svc, _ := setupCatalog(t)
	austen := addAuthor(t, svc, "Jane Austen")
	addAuthor(t, svc, "Frank Herbert")
	router := newAPIRouter(svc)

	t.Run("lists authors by name", func(t *testing.T) {
		w := get(router, "/api/authors")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Authors []entities.Author `json:"authors"`
			Count   int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Frank Herbert", resp.Authors[0].Name)
		assert.Equal(t, "Jane Austen", resp.Authors[1].Name)
	})

	t.Run("gets author by id", func(t *testing.T) {
		w := get(router, fmt.Sprintf("/api/authors/%d", austen.ID))
		require.Equal(t, http.StatusOK, w.Code)

		var author entities.Author
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
		assert.Equal(t, "Jane Austen", author.Name)
	})

	t.Run("returns 404 for unknown author", func(t *testing.T) {
		w := get(router, "/api/authors/999")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), services.MsgAuthorMissing)
	})

	t.Run("returns 400 for malformed id", func(t *testing.T) {
		w := get(router, "/api/authors/abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogAPI_CreateAuthor(t *testing.T) {
	t.Run("creates author", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := postJSON(newAPIRouter(svc), "/api/authors",
			`{"name":"Ursula K. Le Guin","birth_date":"1929-10-21","date_of_death":"2018-01-22"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var author entities.Author
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
		assert.NotZero(t, author.ID)
		assert.Equal(t, "Ursula K. Le Guin", author.Name)
		require.NotNil(t, author.BirthDate)
		assert.Equal(t, "1929-10-21", entities.FormatDate(author.BirthDate))
	})

	t.Run("returns 422 with every validation message", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := postJSON(newAPIRouter(svc), "/api/authors", `{"name":"","birth_date":"21/10/1929"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{forms.MsgAuthorNameRequired, forms.MsgInvalidBirthDate}, resp.Details)
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := postJSON(newAPIRouter(svc), "/api/authors", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		w := postJSON(newAPIRouter(brokenCatalog{}), "/api/authors", `{"name":"Someone"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCatalogAPI_CreateBook(t *testing.T) {
	t.Run("creates book with numeric fields", func(t *testing.T) {
		svc, _ := setupCatalog(t)
		herbert := addAuthor(t, svc, "Frank Herbert")

		body := fmt.Sprintf(`{"title":"Dune","isbn":"9780441013593","publication_year":1965,"author_id":%d}`, herbert.ID)
		w := postJSON(newAPIRouter(svc), "/api/books", body)
		require.Equal(t, http.StatusCreated, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "Dune", book.Title)
		require.NotNil(t, book.PublicationYear)
		assert.Equal(t, 1965, *book.PublicationYear)
		assert.Equal(t, "Frank Herbert", book.Author.Name)
	})

	t.Run("accepts a numeric ISBN", func(t *testing.T) {
		svc, _ := setupCatalog(t)
		herbert := addAuthor(t, svc, "Frank Herbert")

		body := fmt.Sprintf(`{"title":"Dune","isbn":9780441013593,"author_id":%d}`, herbert.ID)
		w := postJSON(newAPIRouter(svc), "/api/books", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "9780441013593", book.ISBN)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := postJSON(newAPIRouter(svc), "/api/books", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid JSON body")
	})

	t.Run("rejects unknown author", func(t *testing.T) {
		svc, _ := setupCatalog(t)

		w := postJSON(newAPIRouter(svc), "/api/books", `{"title":"Dune","isbn":"9780441013593","author_id":"77"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), forms.MsgAuthorDoesNotExist)
	})

	t.Run("duplicate ISBN is a storage failure", func(t *testing.T) {
		svc, _ := setupCatalog(t)
		herbert := addAuthor(t, svc, "Frank Herbert")
		addBook(t, svc, "Dune", "9780441013593", herbert.ID)

		body := fmt.Sprintf(`{"title":"Dune again","isbn":"9780441013593","author_id":%d}`, herbert.ID)
		w := postJSON(newAPIRouter(svc), "/api/books", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCatalogAPI_GetStats(t *testing.T) {
	svc, _ := setupCatalog(t)
	herbert := addAuthor(t, svc, "Frank Herbert")
	addBook(t, svc, "Dune", "9780441013593", herbert.ID)
	addAuthor(t, svc, "Jane Austen")

	w := get(newAPIRouter(svc), "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp["total_authors"])
	assert.Equal(t, int64(1), resp["total_books"])
}
