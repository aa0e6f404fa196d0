// Package cli provides the cobra command tree: the HTTP server plus catalog
// commands that work directly against the database.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/services"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	serve := func(cmd *cobra.Command, args []string) error {
		return entrypoint.Run(cfg, version)
	}

	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "A small library catalog of authors and books",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the catalog database (overrides DATABASE_PATH)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newAddAuthorCommand(cfg),
		newAddBookCommand(cfg),
		newListBooksCommand(cfg),
		newDeleteBookCommand(cfg),
	)

	return root
}

// withApp opens the catalog for the duration of fn.
func withApp(cfg *config.Config, fn func(ctx context.Context, app *entrypoint.App) error) error {
	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		return err
	}
	runErr := fn(context.Background(), app)
	if err := app.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close database: %w", err)
	}
	return runErr
}

// userError turns a catalog failure into the messages a user would see in
// the web UI, one per line.
func userError(err error) error {
	return errors.New(strings.Join(services.Messages(err), "\n"))
}
