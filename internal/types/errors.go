package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoPublishDate = errors.New("no parsable publish date")
	ErrBodyTooShort  = errors.New("body text below minimum length")
	ErrNoNextPage    = errors.New("no further listing page")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrMissingConfig = errors.New("missing required configuration")
)

// FetchError wraps errors that occur while fetching a page or an image.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractError wraps errors from article field extraction. Field names the
// field whose strategies all came up empty.
type ExtractError struct {
	URL   string
	Field string
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (field=%q): %v", e.URL, e.Field, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// StorageError wraps database and snapshot persistence errors.
type StorageError struct {
	Op   string
	Link string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Link != "" {
		return fmt.Sprintf("storage error (%s) for %s: %v", e.Op, e.Link, e.Err)
	}
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PublishError wraps failures in the two-phase media publish protocol.
type PublishError struct {
	Phase string // "container" or "publish"
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish error at phase %q: %v", e.Phase, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
