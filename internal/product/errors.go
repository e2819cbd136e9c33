package product

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrValidation = errors.New("invalid product input")
	ErrStorage    = errors.New("product storage failure")
)

// ValidationError carries the message returned to the caller on a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// StorageError wraps an unexpected driver failure. Its text is for operators only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// storageErr records the failing operation and a stack trace for the log.
func storageErr(op string, err error) error {
	return errors.WithStack(&StorageError{Op: op, Err: err})
}
