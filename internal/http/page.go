package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/security"
)

// pageData builds the template data shared by every rendered page and merges
// data into it. Flashed messages are drained from the session here, so call
// it once per response.
func pageData(c *gin.Context, flashes Flasher, data gin.H) gin.H {
	page := gin.H{
		"Flashes":   flashes.Pop(c.Request.Context()),
		"CSRFField": template.HTML(security.TokenField(c)),
		"ReadOnly":  c.GetBool(readonly.ContextKey),
	}
	for k, v := range data {
		page[k] = v
	}
	return page
}

// templateFuncs are available to every template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": entities.FormatDate,
		"year": func(y *int) int {
			if y == nil {
				return 0
			}
			return *y
		},
		"page": pageWithTitle,
	}
}

// pageWithTitle copies page data and sets the document title.
func pageWithTitle(title string, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["Title"] = title
	return out
}

// LoadTemplates parses every *.html file in dir with the shared template functions.
func LoadTemplates(dir string) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseGlob(dir + "/*.html")
}

// ParseTemplates parses inline template text with the shared template functions.
func ParseTemplates(text string) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).Parse(text)
}
