package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/forms"
	"github.com/mrlokans/bookshelf/internal/services"
)

func newAddAuthorCommand(cfg *config.Config) *cobra.Command {
	var name, birthDate, dateOfDeath string

	cmd := &cobra.Command{
		Use:   "add-author",
		Short: "Add an author to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := forms.Fields{
				forms.FieldName:        name,
				forms.FieldBirthDate:   birthDate,
				forms.FieldDateOfDeath: dateOfDeath,
			}
			return withApp(cfg, func(ctx context.Context, app *entrypoint.App) error {
				author, err := app.Catalog.AddAuthor(ctx, fields)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), services.MsgAuthorAdded)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", author.ID, author)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Author name (required)")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&dateOfDeath, "date-of-death", "", "Date of death, YYYY-MM-DD")

	return cmd
}

func newAddBookCommand(cfg *config.Config) *cobra.Command {
	var title, isbn, year, authorID string

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book by an existing author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := forms.Fields{
				forms.FieldTitle:           title,
				forms.FieldISBN:            isbn,
				forms.FieldPublicationYear: year,
				forms.FieldAuthorID:        authorID,
			}
			return withApp(cfg, func(ctx context.Context, app *entrypoint.App) error {
				book, err := app.Catalog.AddBook(ctx, fields)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), services.MsgBookAdded)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", book.ID, book)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&isbn, "isbn", "", "13-digit ISBN (required)")
	cmd.Flags().StringVar(&year, "year", "", "Publication year")
	cmd.Flags().StringVar(&authorID, "author-id", "", "ID of the book's author (required)")

	return cmd
}

func newListBooksCommand(cfg *config.Config) *cobra.Command {
	var sortBy, search string

	cmd := &cobra.Command{
		Use:   "list-books",
		Short: "List books, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg, func(ctx context.Context, app *entrypoint.App) error {
				list, err := app.Catalog.ListBooks(ctx, sortBy, search)
				if err != nil {
					return userError(err)
				}
				if list.Advisory != "" {
					fmt.Fprintln(cmd.OutOrStdout(), list.Advisory)
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tYEAR\tISBN")
				for _, book := range list.Books {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						book.ID, book.Title, book.Author.Name, formatYear(book), book.ISBN)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort-by", "title", "Sort order: title or author")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on title or author name")

	return cmd
}

func newDeleteBookCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-book <id>",
		Short: "Delete a book; its author goes too when no books remain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			return withApp(cfg, func(ctx context.Context, app *entrypoint.App) error {
				outcome, err := app.Catalog.DeleteBook(ctx, uint(id))
				if err != nil {
					return userError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Message())
				return nil
			})
		},
	}
}

func formatYear(book entities.Book) string {
	if book.PublicationYear == nil {
		return "-"
	}
	return strconv.Itoa(*book.PublicationYear)
}
