package forms

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	MsgAuthorNameRequired    = "Author name is required."
	MsgInvalidBirthDate      = "Invalid birth date format."
	MsgBirthDateInFuture     = "Birth date cannot be in the future."
	MsgInvalidDateOfDeath    = "Invalid date of death format."
	MsgDeathBeforeBirth      = "Date of death must be after birth date."
	MsgBookTitleRequired     = "Book title is required."
	MsgBookTitleTooLong      = "Book title must not exceed 255 characters."
	MsgISBNRequired          = "ISBN is required."
	MsgISBNFormat            = "ISBN must be a 13-digit number."
	MsgInvalidPublicationYr  = "Invalid publication year format."
	MsgPublicationYrInFuture = "Publication year cannot be in the future."
	MsgAuthorRequired        = "Please select an author."
	MsgInvalidAuthorID       = "Invalid author ID."
	MsgAuthorDoesNotExist    = "Selected author does not exist."

	// MsgAuthorLookupFailed prefixes the cause when the author check itself fails.
	MsgAuthorLookupFailed = "Could not verify selected author: "
)

// MaxTitleLength is the longest accepted book title, in characters.
const MaxTitleLength = 255

var isbnPattern = regexp.MustCompile(`^[0-9]{13}$`)

// AuthorLookup confirms that a referenced author exists.
type AuthorLookup interface {
	AuthorExists(ctx context.Context, id uint) (bool, error)
}

// AuthorInput is the typed result of author validation.
type AuthorInput struct {
	Name        string
	BirthDate   *time.Time
	DateOfDeath *time.Time
}

// BookInput is the typed result of book validation.
type BookInput struct {
	Title           string
	ISBN            string
	PublicationYear *int
	AuthorID        uint
}

// Validator applies the author and book rules relative to a clock.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator. A nil clock means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Author validates author fields. The record always carries the name and
// whatever dates parsed, even when messages are returned.
func (v *Validator) Author(fields Fields) ([]string, AuthorInput) {
	record := AuthorInput{Name: fields.Get(FieldName)}
	today := v.today()

	errs := validation.Errors{}
	errs[FieldName] = validation.Validate(record.Name,
		validation.Required.Error(MsgAuthorNameRequired),
	)
	errs[FieldBirthDate] = validation.Validate(fields.Get(FieldBirthDate),
		validation.By(func(value interface{}) error {
			date, err := parseDate(value.(string), MsgInvalidBirthDate)
			if err != nil || date == nil {
				return err
			}
			record.BirthDate = date
			if date.After(today) {
				return errors.New(MsgBirthDateInFuture)
			}
			return nil
		}),
	)
	errs[FieldDateOfDeath] = validation.Validate(fields.Get(FieldDateOfDeath),
		validation.By(func(value interface{}) error {
			date, err := parseDate(value.(string), MsgInvalidDateOfDeath)
			if err != nil || date == nil {
				return err
			}
			record.DateOfDeath = date
			if record.BirthDate != nil && date.Before(*record.BirthDate) {
				return errors.New(MsgDeathBeforeBirth)
			}
			return nil
		}),
	)

	return messages(errs, FieldName, FieldBirthDate, FieldDateOfDeath), record
}

// Book validates book fields. The author reference is checked against authors,
// which is the only I/O performed during validation.
func (v *Validator) Book(ctx context.Context, fields Fields, authors AuthorLookup) ([]string, BookInput) {
	record := BookInput{
		Title: fields.Get(FieldTitle),
		ISBN:  fields.Get(FieldISBN),
	}
	currentYear := v.now().Year()

	errs := validation.Errors{}
	errs[FieldTitle] = validation.Validate(record.Title,
		validation.Required.Error(MsgBookTitleRequired),
		validation.RuneLength(0, MaxTitleLength).Error(MsgBookTitleTooLong),
	)
	errs[FieldISBN] = validation.Validate(record.ISBN,
		validation.Required.Error(MsgISBNRequired),
		validation.Match(isbnPattern).Error(MsgISBNFormat),
	)
	errs[FieldPublicationYear] = validation.Validate(fields.Get(FieldPublicationYear),
		validation.By(func(value interface{}) error {
			raw := value.(string)
			if raw == "" {
				return nil
			}
			year, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return errors.New(MsgInvalidPublicationYr)
			}
			record.PublicationYear = &year
			if year > currentYear {
				return errors.New(MsgPublicationYrInFuture)
			}
			return nil
		}),
	)
	errs[FieldAuthorID] = validation.Validate(fields.Get(FieldAuthorID),
		validation.Required.Error(MsgAuthorRequired),
		validation.By(func(value interface{}) error {
			id, err := strconv.ParseInt(strings.TrimSpace(value.(string)), 10, 64)
			if errors.Is(err, strconv.ErrRange) {
				return errors.New(MsgAuthorDoesNotExist)
			}
			if err != nil {
				return errors.New(MsgInvalidAuthorID)
			}
			if id <= 0 || uint64(id) > uint64(^uint(0)) {
				return errors.New(MsgAuthorDoesNotExist)
			}
			record.AuthorID = uint(id)
			if authors == nil {
				return nil
			}
			exists, err := authors.AuthorExists(ctx, record.AuthorID)
			if err != nil {
				return errors.New(MsgAuthorLookupFailed + err.Error() + ".")
			}
			if !exists {
				return errors.New(MsgAuthorDoesNotExist)
			}
			return nil
		}),
	)

	return messages(errs, FieldTitle, FieldISBN, FieldPublicationYear, FieldAuthorID), record
}

// today is the current calendar date as a UTC midnight, comparable with parsed dates.
func (v *Validator) today() time.Time {
	y, m, d := v.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate parses a YYYY-MM-DD value. An empty value yields (nil, nil).
func parseDate(raw, invalidMsg string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(entities.DateLayout, raw)
	if err != nil {
		return nil, errors.New(invalidMsg)
	}
	return &date, nil
}

// messages flattens per-field errors into a list ordered by field.
func messages(errs validation.Errors, order ...string) []string {
	var out []string
	for _, field := range order {
		if err := errs[field]; err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}
