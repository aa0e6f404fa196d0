package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/flash"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/services"
)

type UIController struct {
	catalog Catalog
	flashes Flasher
}

func NewUIController(catalog Catalog, flashes Flasher) *UIController {
	if flashes == nil {
		flashes = nopFlasher{}
	}
	return &UIController{
		catalog: catalog,
		flashes: flashes,
	}
}

// HomePage lists the catalog.
// GET / and GET /home?sort_by=title|author&search_query=...
func (controller *UIController) HomePage(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := controller.catalog.ListBooks(ctx, c.Query("sort_by"), c.Query("search_query"))
	if err != nil {
		logFailure(c, err, "list books")
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	if list.Advisory != "" {
		controller.flashes.Add(ctx, flash.CategoryWarning, list.Advisory)
	}

	totalAuthors, totalBooks, err := controller.catalog.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load catalog stats")
	}

	c.HTML(http.StatusOK, "home", pageData(c, controller.flashes, gin.H{
		"Books":        list.Books,
		"SortBy":       string(list.SortBy),
		"SearchQuery":  list.Search,
		"TotalAuthors": totalAuthors,
		"TotalBooks":   totalBooks,
	}))
}

// AddAuthorPage renders the author form.
// GET /add_author
func (controller *UIController) AddAuthorPage(c *gin.Context) {
	c.HTML(http.StatusOK, "add_author", pageData(c, controller.flashes, nil))
}

// AddAuthor handles the author form submission.
// POST /add_author
func (controller *UIController) AddAuthor(c *gin.Context) {
	ctx := c.Request.Context()

	fields, ok := controller.formFields(c)
	if ok {
		if _, err := controller.catalog.AddAuthor(ctx, fields); err != nil {
			logFailure(c, err, "add author")
			controller.flashes.AddAll(ctx, flash.CategoryError, services.Messages(err))
		} else {
			controller.flashes.Add(ctx, flash.CategorySuccess, services.MsgAuthorAdded)
		}
	}

	c.Redirect(http.StatusSeeOther, "/add_author")
}

// AddBookPage renders the book form with the author picker.
// GET /add_book
func (controller *UIController) AddBookPage(c *gin.Context) {
	ctx := c.Request.Context()

	authors, err := controller.catalog.Authors(ctx)
	if err != nil {
		logFailure(c, err, "list authors")
		c.String(http.StatusInternalServerError, "Error loading authors: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "add_book", pageData(c, controller.flashes, gin.H{
		"Authors": authors,
	}))
}

// AddBook handles the book form submission.
// POST /add_book
func (controller *UIController) AddBook(c *gin.Context) {
	ctx := c.Request.Context()

	fields, ok := controller.formFields(c)
	if ok {
		if _, err := controller.catalog.AddBook(ctx, fields); err != nil {
			logFailure(c, err, "add book")
			controller.flashes.AddAll(ctx, flash.CategoryError, services.Messages(err))
		} else {
			controller.flashes.Add(ctx, flash.CategorySuccess, services.MsgBookAdded)
		}
	}

	c.Redirect(http.StatusSeeOther, "/add_book")
}

func (controller *UIController) formFields(c *gin.Context) (forms.Fields, bool) {
	if err := c.Request.ParseForm(); err != nil {
		controller.flashes.Add(c.Request.Context(), flash.CategoryError, "Invalid form submission.")
		return nil, false
	}
	return forms.FieldsFromValues(c.Request.PostForm), true
}

// logFailure logs storage failures. Validation and not-found errors are
// expected user input problems and are not logged.
func logFailure(c *gin.Context, err error, op string) {
	if catalog.IsValidationError(err) || catalog.IsNotFoundError(err) {
		return
	}
	log.Error().
		Err(err).
		Str("op", op).
		Str(logging.RequestIDKey, c.GetString(logging.RequestIDKey)).
		Msg("Catalog operation failed")
}
