package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField marks a record that lacks a required field. Search and
	// list flows absorb it; it never surfaces as a system failure.
	ErrMissingField = errors.New("required field missing")

	// ErrMalformed marks a payload that could not be decoded at all.
	ErrMalformed = errors.New("malformed catalog payload")

	// ErrConsumed is yielded when a search sequence is ranged a second time.
	ErrConsumed = errors.New("search results already consumed")
)

// Error codes used by CatalogError.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "UNAVAILABLE"
	CodeHTTP        = "HTTP_ERROR"
	CodeUnknown     = "UNKNOWN"
)

// CatalogError represents a transport level failure talking to a catalog
type CatalogError struct {
	Catalog string
	Code    string
	Message string
	Status  int  // HTTP status when known
	Retry   bool // whether a later attempt may succeed
}

func (e *CatalogError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Catalog, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Catalog, e.Message)
}

// missingField wraps ErrMissingField with the name of the absent field.
func missingField(record, field string) error {
	return fmt.Errorf("%s: %q: %w", record, field, ErrMissingField)
}

// IsNotFound reports whether err is a catalog NOT_FOUND failure.
func IsNotFound(err error) bool {
	var ce *CatalogError
	return errors.As(err, &ce) && ce.Code == CodeNotFound
}
