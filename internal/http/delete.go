package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/flash"
	"github.com/mrlokans/bookshelf/internal/services"
)

// DeleteResponse is the API result of a book deletion.
type DeleteResponse struct {
	Outcome    catalog.DeleteKind `json:"outcome"`
	BookID     uint               `json:"book_id"`
	AuthorName string             `json:"author_name,omitempty"`
	Message    string             `json:"message"`
}

type DeleteController struct {
	catalog CatalogWriter
	flashes Flasher
}

func NewDeleteController(catalog CatalogWriter, flashes Flasher) *DeleteController {
	if flashes == nil {
		flashes = nopFlasher{}
	}
	return &DeleteController{catalog: catalog, flashes: flashes}
}

// DeleteBookForm deletes a book from the home page and flashes the outcome.
// The author goes too when this was their last book.
// POST /book/:id/delete
func (dc *DeleteController) DeleteBookForm(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c.Param("id"))
	if !ok {
		dc.flashes.Add(ctx, flash.CategoryError, services.MsgBookNotFound)
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	outcome, err := dc.catalog.DeleteBook(ctx, id)
	if err != nil {
		logFailure(c, err, "delete book")
		dc.flashes.Add(ctx, flash.CategoryError, services.Message(err))
	} else {
		dc.flashes.Add(ctx, flash.CategorySuccess, outcome.Message())
	}

	c.Redirect(http.StatusSeeOther, "/home")
}

// DeleteBook deletes a book, cascading to its author.
// DELETE /api/books/:id
func (dc *DeleteController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := dc.catalog.DeleteBook(c.Request.Context(), id)
	if err != nil {
		respondCatalogError(c, err, "delete book")
		return
	}

	resp := DeleteResponse{
		Outcome: outcome.Kind,
		BookID:  outcome.BookID,
		Message: outcome.Message(),
	}
	if outcome.AuthorDeleted() {
		resp.AuthorName = outcome.AuthorName
	}
	c.IndentedJSON(http.StatusOK, resp)
}
