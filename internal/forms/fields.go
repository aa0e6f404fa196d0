// Package forms validates submitted author and book field data.
//
// Validation never short-circuits: every rule runs and the caller receives the
// full, ordered list of human-readable messages together with the typed record
// parsed so far. A record must only be persisted when the message list is empty.
//
// # Usage
//
//	v := forms.NewValidator(time.Now)
//	msgs, author := v.Author(forms.FieldsFromValues(c.Request.PostForm))
//	msgs, book := v.Book(ctx, fields, repo) // repo implements AuthorLookup
package forms

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Field names accepted in submitted data.
const (
	FieldName            = "name"
	FieldBirthDate       = "birth_date"
	FieldDateOfDeath     = "date_of_death"
	FieldTitle           = "title"
	FieldISBN            = "isbn"
	FieldPublicationYear = "publication_year"
	FieldAuthorID        = "author_id"
)

// Fields is an untyped field-value mapping as submitted by a form.
// An absent key and an empty value are treated the same.
type Fields map[string]string

// Get returns the value for key, or "" when absent.
func (f Fields) Get(key string) string {
	if f == nil {
		return ""
	}
	return f[key]
}

// FieldsFromValues takes the first value of each form key.
func FieldsFromValues(values url.Values) Fields {
	fields := make(Fields, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields
}

// FieldsFromMap converts a decoded JSON object into Fields. Null values are
// treated as absent. Numbers are rendered in plain decimal notation, so a
// numeric ISBN keeps all of its digits.
func FieldsFromMap(m map[string]any) Fields {
	fields := make(Fields, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields
}
