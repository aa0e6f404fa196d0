package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultEnvFile is read at startup when present
	DefaultEnvFile = ".env"
)
