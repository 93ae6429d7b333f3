package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEntry       = errors.New("invalid catalog entry")
	ErrArtifactNotFound   = errors.New("staging artifact not found")
	ErrUnsupportedFormat  = errors.New("unsupported artifact format")
	ErrUnknownBackend     = errors.New("unknown staging backend")
	ErrUnknownSink        = errors.New("unknown sink type")
	ErrEmptyResponse      = errors.New("empty response body")
	ErrCheckpointNotFound = errors.New("stage checkpoint not found")
)

// FetchError wraps a failed request against the storefront.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
