package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned for blank chat input
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrNoClient means no provider client could be built for a session
	ErrNoClient = errors.New("no client for provider")
)

// ProviderError wraps a failed inference call. Nothing was written to the ledger.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s) failed: %v", e.Provider, e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
