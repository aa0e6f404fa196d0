package http

import (
	"html/template"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/flash"
	"github.com/mrlokans/bookshelf/internal/readonly"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Database *database.Database

	// Audit trail (optional)
	AuditReader AuditReader

	// Flash messages; without it messages are dropped
	FlashManager *flash.Manager

	// CSRF protection for form posts; disabled when empty
	CSRFSecret    []byte
	SecureCookies bool

	// Read-only mode (optional)
	ReadOnly *readonly.Middleware

	// Task queue client (optional)
	TaskQueue          TaskQueue
	AuditRetentionDays int

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Templates overrides TemplatesPath when set
	Templates *template.Template

	// Application info
	Version string
}
