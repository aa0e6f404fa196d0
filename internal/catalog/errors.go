// Package catalog defines the shared types and error taxonomy of the author/book catalog.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is returned when submitted field data is malformed or inconsistent.
// Messages holds every violation, in rule order.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, " ")
}

// Is allows proper error type checking with errors.Is()
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError is returned when a referenced author or book does not exist
type NotFoundError struct {
	Entity string
	ID     uint
}

// Error implements the error interface for NotFoundError
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%d", e.Entity, e.ID)
}

// Is allows proper error type checking with errors.Is()
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// StorageError is returned when the underlying persistence operation failed.
// The transaction it happened in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface for StorageError
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying persistence error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is allows proper error type checking with errors.Is()
func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(messages []string) error {
	return &ValidationError{Messages: messages}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewStorageError creates a new StorageError
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStorageError checks if an error is a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ValidationMessages returns the messages of a ValidationError in err's chain, or nil.
func ValidationMessages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	return nil
}
