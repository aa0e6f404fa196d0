// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── catalog/         # Authors, books, cascading delete, search and sort
//	└── audit/           # Audit event storage and retention
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookshelf.db")
//
//	catalogRepo := catalog.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	books, err := catalogRepo.ListBooks(ctx, domain.SortByAuthor, "tolkien")
//
// # Interface Implementations
//
//   - catalog.Repository: implements services.CatalogStore and forms.AuthorLookup
//   - audit.Repository: backs audit.Service and tasks.AuditEventCleaner
package database
