// Package errs provides the standardized error taxonomy for the order core.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// Each error kind follows the same shape:
//   - a sentinel error variable (e.g. ErrInvalidTransition) for errors.Is
//   - a struct type carrying the error details
//   - constructor functions with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The taxonomy distinguishes business rejections (InvalidTransitionError,
// AuthorizationError) from transport failures (LedgerUnavailableError):
// only the latter may be retried. DecryptionError always fails closed.
package errs
