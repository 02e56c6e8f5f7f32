/*
errors.go - Centralized error types

PURPOSE:
  Sentinel errors shared by the scheduling packages. Domain packages wrap
  these with structured errors that carry context (see timeoff/errors.go).

ERROR CATEGORIES:
  1. Validation errors - insufficient PTO, overlapping time off, bad input.
     These are decided before any write; the store never enforces them.
  2. Lookup errors - missing employee, entry or job code
  3. Store errors - database failures, wrapped with %w by the store

USAGE:
  if errors.Is(err, generic.ErrOverlap) {
      var overlap *timeoff.OverlapError
      errors.As(err, &overlap)
      ...
  }
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a PTO request exceeds the hours
	// remaining in the trimester of its first day.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOverlap is returned when new time off falls on a day that already
	// has time off for the same employee.
	ErrOverlap = errors.New("time off overlaps existing entries")

	// ErrEntityNotFound is returned when a referenced record doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidRequest is returned for malformed input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicate is returned when a unique key (job code, history row) collides.
	ErrDuplicate = errors.New("duplicate key")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDuplicate)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsConflict returns true for rule violations the caller may resolve by
// changing the request (overlap, insufficient balance).
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlap) || errors.Is(err, ErrInsufficientBalance)
}
