package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile            = errors.New("no file")
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrInvalidImage      = errors.New("invalid image")
	ErrDuplicateFilename = errors.New("filename already exists")
	ErrNotFound          = errors.New("not found")
)

// StorageError reports a failed disk or database operation during an upload.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
