package forms

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)
}

type stubLookup struct {
	existing map[uint]bool
	err      error
	calls    int
}

func (s *stubLookup) AuthorExists(ctx context.Context, id uint) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.existing[id], nil
}

func validBookFields() Fields {
	return Fields{
		FieldTitle:           "The Left Hand of Darkness",
		FieldISBN:            "9780441478125",
		FieldPublicationYear: "1969",
		FieldAuthorID:        "1",
	}
}

func TestValidator_Author(t *testing.T) {
	v := NewValidator(fixedClock)

	tests := []struct {
		name     string
		fields   Fields
		expected []string
	}{
		{"valid full record", Fields{FieldName: "Ursula K. Le Guin", FieldBirthDate: "1929-10-21", FieldDateOfDeath: "2018-01-22"}, nil},
		{"name only", Fields{FieldName: "Anonymous"}, nil},
		{"missing name", Fields{}, []string{MsgAuthorNameRequired}},
		{"empty name", Fields{FieldName: ""}, []string{MsgAuthorNameRequired}},
		{"bad birth date", Fields{FieldName: "A", FieldBirthDate: "21/10/1929"}, []string{MsgInvalidBirthDate}},
		{"future birth date", Fields{FieldName: "A", FieldBirthDate: "2024-06-16"}, []string{MsgBirthDateInFuture}},
		{"birth date today", Fields{FieldName: "A", FieldBirthDate: "2024-06-15"}, nil},
		{"bad death date", Fields{FieldName: "A", FieldDateOfDeath: "yesterday"}, []string{MsgInvalidDateOfDeath}},
		{"death before birth", Fields{FieldName: "A", FieldBirthDate: "1950-01-02", FieldDateOfDeath: "1950-01-01"}, []string{MsgDeathBeforeBirth}},
		{"death on birth date", Fields{FieldName: "A", FieldBirthDate: "1950-01-02", FieldDateOfDeath: "1950-01-02"}, nil},
		{"death without birth", Fields{FieldName: "A", FieldDateOfDeath: "1950-01-01"}, nil},
		{
			"all errors collected in order",
			Fields{FieldBirthDate: "not-a-date", FieldDateOfDeath: "also-not"},
			[]string{MsgAuthorNameRequired, MsgInvalidBirthDate, MsgInvalidDateOfDeath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, _ := v.Author(tt.fields)
			assert.Equal(t, tt.expected, msgs)
		})
	}
}

func TestValidator_Author_Record(t *testing.T) {
	v := NewValidator(fixedClock)

	msgs, record := v.Author(Fields{FieldName: "Ursula K. Le Guin", FieldBirthDate: "1929-10-21"})
	require.Empty(t, msgs)
	assert.Equal(t, "Ursula K. Le Guin", record.Name)
	require.NotNil(t, record.BirthDate)
	assert.Equal(t, time.Date(1929, time.October, 21, 0, 0, 0, 0, time.UTC), *record.BirthDate)
	assert.Nil(t, record.DateOfDeath)

	// Partial record is still returned alongside errors
	msgs, record = v.Author(Fields{FieldBirthDate: "2030-01-01", FieldDateOfDeath: "2029-01-01"})
	assert.Equal(t, []string{MsgAuthorNameRequired, MsgBirthDateInFuture, MsgDeathBeforeBirth}, msgs)
	assert.Empty(t, record.Name)
	assert.NotNil(t, record.BirthDate)
	assert.NotNil(t, record.DateOfDeath)
}

func TestValidator_Author_DeathBirthConsistency(t *testing.T) {
	v := NewValidator(fixedClock)
	birth := time.Date(1900, time.March, 10, 0, 0, 0, 0, time.UTC)

	for offset := -400; offset <= 400; offset += 37 {
		death := birth.AddDate(0, 0, offset)
		msgs, _ := v.Author(Fields{
			FieldName:        "A",
			FieldBirthDate:   birth.Format("2006-01-02"),
			FieldDateOfDeath: death.Format("2006-01-02"),
		})
		if offset < 0 {
			assert.Contains(t, msgs, MsgDeathBeforeBirth, "offset %d", offset)
		} else {
			assert.NotContains(t, msgs, MsgDeathBeforeBirth, "offset %d", offset)
		}
	}
}

func TestValidator_Book(t *testing.T) {
	v := NewValidator(fixedClock)
	lookup := &stubLookup{existing: map[uint]bool{1: true}}

	with := func(key, value string) Fields {
		f := validBookFields()
		f[key] = value
		return f
	}
	without := func(key string) Fields {
		f := validBookFields()
		delete(f, key)
		return f
	}

	tests := []struct {
		name     string
		fields   Fields
		expected []string
	}{
		{"valid", validBookFields(), nil},
		{"missing title", without(FieldTitle), []string{MsgBookTitleRequired}},
		{"title at limit", with(FieldTitle, strings.Repeat("a", 255)), nil},
		{"title too long", with(FieldTitle, strings.Repeat("a", 256)), []string{MsgBookTitleTooLong}},
		{"multibyte title at limit", with(FieldTitle, strings.Repeat("é", 255)), nil},
		{"missing isbn", without(FieldISBN), []string{MsgISBNRequired}},
		{"short isbn", with(FieldISBN, "978044147812"), []string{MsgISBNFormat}},
		{"long isbn", with(FieldISBN, "97804414781255"), []string{MsgISBNFormat}},
		{"isbn with letter", with(FieldISBN, "978044147812X"), []string{MsgISBNFormat}},
		{"isbn with dashes", with(FieldISBN, "978-0441478125"), []string{MsgISBNFormat}},
		{"no year", without(FieldPublicationYear), nil},
		{"bad year", with(FieldPublicationYear, "nineteen"), []string{MsgInvalidPublicationYr}},
		{"current year", with(FieldPublicationYear, "2024"), nil},
		{"future year", with(FieldPublicationYear, "2025"), []string{MsgPublicationYrInFuture}},
		{"missing author", without(FieldAuthorID), []string{MsgAuthorRequired}},
		{"non-numeric author", with(FieldAuthorID, "abc"), []string{MsgInvalidAuthorID}},
		{"unknown author", with(FieldAuthorID, "42"), []string{MsgAuthorDoesNotExist}},
		{"zero author", with(FieldAuthorID, "0"), []string{MsgAuthorDoesNotExist}},
		{"author id beyond 32 bits", with(FieldAuthorID, "4294967296"), []string{MsgAuthorDoesNotExist}},
		{"author id overflowing int64", with(FieldAuthorID, "99999999999999999999"), []string{MsgAuthorDoesNotExist}},
		{
			"all errors collected in order",
			Fields{FieldISBN: "123", FieldPublicationYear: "x"},
			[]string{MsgBookTitleRequired, MsgISBNFormat, MsgInvalidPublicationYr, MsgAuthorRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, _ := v.Book(context.Background(), tt.fields, lookup)
			assert.Equal(t, tt.expected, msgs)
		})
	}
}

func TestValidator_Book_Record(t *testing.T) {
	v := NewValidator(fixedClock)
	lookup := &stubLookup{existing: map[uint]bool{1: true}}

	msgs, record := v.Book(context.Background(), validBookFields(), lookup)
	require.Empty(t, msgs)
	assert.Equal(t, "The Left Hand of Darkness", record.Title)
	assert.Equal(t, "9780441478125", record.ISBN)
	require.NotNil(t, record.PublicationYear)
	assert.Equal(t, 1969, *record.PublicationYear)
	assert.Equal(t, uint(1), record.AuthorID)
	assert.Equal(t, 1, lookup.calls)

	f := validBookFields()
	delete(f, FieldPublicationYear)
	_, record = v.Book(context.Background(), f, lookup)
	assert.Nil(t, record.PublicationYear)
}

func TestValidator_Book_YearBoundary(t *testing.T) {
	v := NewValidator(fixedClock)
	lookup := &stubLookup{existing: map[uint]bool{1: true}}

	for year := 1990; year <= 2030; year++ {
		f := validBookFields()
		f[FieldPublicationYear] = strconv.Itoa(year)
		msgs, _ := v.Book(context.Background(), f, lookup)
		if year > 2024 {
			assert.Equal(t, []string{MsgPublicationYrInFuture}, msgs, "year %d", year)
		} else {
			assert.Empty(t, msgs, "year %d", year)
		}
	}
}

func TestValidator_Book_LookupFailure(t *testing.T) {
	v := NewValidator(fixedClock)
	lookup := &stubLookup{err: errors.New("database is locked")}

	msgs, _ := v.Book(context.Background(), validBookFields(), lookup)
	assert.Equal(t, []string{"Could not verify selected author: database is locked."}, msgs)
}

func TestValidator_Book_SkipsLookupForMalformedID(t *testing.T) {
	v := NewValidator(fixedClock)
	lookup := &stubLookup{existing: map[uint]bool{}}

	_, _ = v.Book(context.Background(), Fields{FieldAuthorID: "nope"}, lookup)
	assert.Equal(t, 0, lookup.calls)
}

func TestFieldsFromValues(t *testing.T) {
	values := url.Values{
		FieldName:      {"First", "Second"},
		FieldBirthDate: {},
	}

	fields := FieldsFromValues(values)
	assert.Equal(t, "First", fields.Get(FieldName))
	assert.Equal(t, "", fields.Get(FieldBirthDate))
	assert.Equal(t, "", fields.Get("missing"))
}

func TestFieldsFromMap(t *testing.T) {
	fields := FieldsFromMap(map[string]any{
		FieldTitle:           "Dune",
		FieldPublicationYear: 1965,
		FieldAuthorID:        nil,
	})

	assert.Equal(t, "Dune", fields.Get(FieldTitle))
	assert.Equal(t, "1965", fields.Get(FieldPublicationYear))
	_, ok := fields[FieldAuthorID]
	assert.False(t, ok)
}

func TestFieldsFromMap_LargeNumbers(t *testing.T) {
	fields := FieldsFromMap(map[string]any{
		FieldISBN:            9780441478125.0,
		FieldPublicationYear: json.Number("1969"),
		FieldAuthorID:        json.Number("18446744073709551615"),
	})

	assert.Equal(t, "9780441478125", fields.Get(FieldISBN))
	assert.Equal(t, "1969", fields.Get(FieldPublicationYear))
	assert.Equal(t, "18446744073709551615", fields.Get(FieldAuthorID))
}

func TestFields_GetOnNil(t *testing.T) {
	var f Fields
	assert.Equal(t, "", f.Get(FieldName))
}
