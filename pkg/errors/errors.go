package errors

import "errors"

// ErrConcurrencyConflict is returned when a compare-and-set update loses
// the race against a concurrent writer. Callers may re-read and retry.
var ErrConcurrencyConflict = errors.New("record was modified concurrently, reload and retry")

// IsRetryable reports whether err is a lost optimistic-lock race.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
