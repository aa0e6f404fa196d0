package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/services"
)

// CatalogAPIController serves the catalog as JSON.
type CatalogAPIController struct {
	catalog Catalog
}

func NewCatalogAPIController(catalog Catalog) *CatalogAPIController {
	return &CatalogAPIController{catalog: catalog}
}

// ListBooks handles GET /api/books?sort_by=&search_query=
func (controller *CatalogAPIController) ListBooks(c *gin.Context) {
	list, err := controller.catalog.ListBooks(c.Request.Context(), c.Query("sort_by"), c.Query("search_query"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	books := list.Books
	if books == nil {
		books = []entities.Book{}
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"books":        books,
		"count":        len(books),
		"sort_by":      list.SortBy,
		"search_query": list.Search,
		"advisory":     list.Advisory,
	})
}

// ListAuthors handles GET /api/authors
func (controller *CatalogAPIController) ListAuthors(c *gin.Context) {
	authors, err := controller.catalog.Authors(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	if authors == nil {
		authors = []entities.Author{}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

// GetAuthor handles GET /api/authors/:id
func (controller *CatalogAPIController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := controller.catalog.Author(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get author")
		return
	}
	if author == nil {
		respondNotFound(c, services.MsgAuthorMissing)
		return
	}

	c.IndentedJSON(http.StatusOK, author)
}

// CreateAuthor handles POST /api/authors with a JSON field map.
func (controller *CatalogAPIController) CreateAuthor(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	author, err := controller.catalog.AddAuthor(c.Request.Context(), fields)
	if err != nil {
		respondCatalogError(c, err, "create author")
		return
	}

	c.IndentedJSON(http.StatusCreated, author)
}

// CreateBook handles POST /api/books with a JSON field map.
func (controller *CatalogAPIController) CreateBook(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	book, err := controller.catalog.AddBook(c.Request.Context(), fields)
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}

	c.IndentedJSON(http.StatusCreated, book)
}

// GetStats handles GET /api/stats
func (controller *CatalogAPIController) GetStats(c *gin.Context) {
	totalAuthors, totalBooks, err := controller.catalog.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "stats")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"total_authors": totalAuthors,
		"total_books":   totalBooks,
	})
}

func bindFields(c *gin.Context) (forms.Fields, bool) {
	var body map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return nil, false
	}
	return forms.FieldsFromMap(body), true
}
