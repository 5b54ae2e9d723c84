// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNoCampaignsAvailable is the expected empty result of polling for work:
// no campaign is eligible for acquisition (or completion). It is not a fault.
var ErrNoCampaignsAvailable = errors.New("no campaigns available")

// NotFoundError means a referenced campaign, recipient, notification or user
// does not exist.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string { return e.Detail }

func NewNotFound(format string, args ...any) error {
	return &NotFoundError{Detail: fmt.Sprintf(format, args...)}
}

// ConflictError means an invariant was violated: a duplicate unique value or
// an illegal state transition. The caller must correct the input; retrying
// the same call will fail again.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string { return e.Detail }

func NewConflict(format string, args ...any) error {
	return &ConflictError{Detail: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
