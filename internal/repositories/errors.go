package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NotFoundError identifies a missing entity reference with enough detail for
// the HTTP layer to produce an actionable message.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func NewNotFoundError(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// StorageError wraps an unexpected persistence failure. It is never swallowed;
// callers decide whether to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsNotFoundError reports whether err is a missing-record error, either ours
// or gorm's.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation.
// The progress upsert uses it to detect the loser of an insert race.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
