package repositories

import (
	"errors"
	"fmt"
)

// ErrUsageLimitReached is returned by OfferRepository.IncrementUsage when the usage cap is already met.
var ErrUsageLimitReached = errors.New("offer usage limit reached")

type storeError struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *storeError) Error() string {
	if e.op == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *storeError) Unwrap() error       { return e.err }
func (e *storeError) IsNotFound() bool    { return e.notFound }
func (e *storeError) IsConflict() bool    { return e.conflict }
func (e *storeError) IsUnavailable() bool { return e.unavailable }

// NewNotFoundError builds a RepositoryError reporting a missing record.
func NewNotFoundError(op, what string) error {
	return &storeError{op: op, err: fmt.Errorf("%s not found", what), notFound: true}
}

// NewConflictError builds a RepositoryError reporting a write conflict.
func NewConflictError(op string, err error) error {
	return &storeError{op: op, err: err, conflict: true}
}

// NewUnavailableError builds a RepositoryError reporting a backend outage.
func NewUnavailableError(op string, err error) error {
	return &storeError{op: op, err: err, unavailable: true}
}

// IsNotFound reports whether err carries not-found semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
