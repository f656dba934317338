package storage

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnavailable marks failures of the backend itself. Callers propagate
// it instead of degrading.
var ErrUnavailable = errors.New("storage unavailable")

// ErrInvalidPattern is returned for match patterns that do not compile.
var ErrInvalidPattern = errors.New("invalid match pattern")

// NotFoundError is returned when a document doesn't exist in the store.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return "document not found: " + strconv.FormatInt(e.ID, 10)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// Unavailable wraps a backend failure of op with ErrUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
