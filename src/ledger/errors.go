package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized means the ledger was used without an open store
	ErrNotInitialized = errors.New("ledger is not initialized")

	// ErrTransaction matches every TransactionError
	ErrTransaction = errors.New("ledger transaction failed")

	// Argument errors
	ErrInvalidRole     = errors.New("role must be user or assistant")
	ErrInvalidLimit    = errors.New("limit must be positive")
	ErrInvalidOffset   = errors.New("offset must not be negative")
	ErrProviderMissing = errors.New("provider is required")
	ErrModelMissing    = errors.New("model is required")
	ErrInvalidLatency  = errors.New("latency must not be negative")
	ErrInvalidTokens   = errors.New("token counts must not be negative")
	ErrInvalidContext  = errors.New("context_messages must not be negative")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBenchRunNotFound is returned when writing to an unknown bench run
	ErrBenchRunNotFound = errors.New("bench run not found")
)

// TransactionError reports a multi-step mutation that was rolled back.
// Nothing it started is visible; the caller may retry.
type TransactionError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *TransactionError) Is(target error) bool {
	return target == ErrTransaction
}

// Retryable is always true: the store is unchanged after a rollback.
func (e *TransactionError) Retryable() bool {
	return true
}

// IsArgumentError reports whether err came from input validation.
func IsArgumentError(err error) bool {
	for _, target := range []error{
		ErrInvalidRole, ErrInvalidLimit, ErrInvalidOffset, ErrProviderMissing,
		ErrModelMissing, ErrInvalidLatency, ErrInvalidTokens, ErrInvalidContext,
		ErrInvalidArgument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
