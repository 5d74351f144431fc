package hasher

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm is returned for an unsupported algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// HashError reports a failure to fingerprint a single file.
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash %s: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error {
	return e.Err
}
