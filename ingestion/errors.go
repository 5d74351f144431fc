package ingestion

import (
	"errors"
	"fmt"

	"github.com/poiesic/kbsync/core"
)

var (
	// ErrLedgerRequired is returned when a ledger is not provided.
	ErrLedgerRequired = errors.New("ledger required")

	// ErrClientRequired is returned when a knowledge client is not provided.
	ErrClientRequired = errors.New("knowledge client required")

	// ErrFingerprinterRequired is returned when a fingerprinter is not provided.
	ErrFingerprinterRequired = errors.New("fingerprinter required")

	// ErrCollectionRequired is returned when Run is called without a collection id.
	ErrCollectionRequired = errors.New("collection id required")

	// ErrInvalidRoot is returned when the scan root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid root directory")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// FileError records why a single file ended in a failure state.
type FileError struct {
	File  string
	State core.FileState
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.File, e.State, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
