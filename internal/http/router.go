package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/security"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(logging.RequestID())
	router.Use(logging.RequestLogger())
	router.Use(logging.Recovery())

	// Apply security headers to all responses
	router.Use(security.HeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(security.HSTSMiddleware())
	}

	// CSRF must run before the session so the session context is preserved
	// across CSRF's request replacement.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	var flashes Flasher = nopFlasher{}
	if cfg.FlashManager != nil {
		router.Use(cfg.FlashManager.Middleware())
		flashes = cfg.FlashManager
	}

	// Read-only blocking flashes its warning, so it runs after the session.
	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	tmpl := cfg.Templates
	if tmpl == nil {
		var err error
		tmpl, err = LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			return nil, err
		}
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	uiController := NewUIController(cfg.Catalog, flashes)
	deleteController := NewDeleteController(cfg.Catalog, flashes)
	apiController := NewCatalogAPIController(cfg.Catalog)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	// UI routes
	router.GET("/", uiController.HomePage)
	router.GET("/home", uiController.HomePage)
	router.GET("/add_author", uiController.AddAuthorPage)
	router.POST("/add_author", uiController.AddAuthor)
	router.GET("/add_book", uiController.AddBookPage)
	router.POST("/add_book", uiController.AddBook)
	router.POST("/book/:id/delete", deleteController.DeleteBookForm)

	// Catalog API endpoints
	router.GET("/api/books", apiController.ListBooks)
	router.POST("/api/books", apiController.CreateBook)
	router.DELETE("/api/books/:id", deleteController.DeleteBook)
	router.GET("/api/authors", apiController.ListAuthors)
	router.POST("/api/authors", apiController.CreateAuthor)
	router.GET("/api/authors/:id", apiController.GetAuthor)
	router.GET("/api/stats", apiController.GetStats)

	// Audit trail
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router, nil
}
