package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/elee1766/chatledger/src/apiclient"
	"github.com/elee1766/chatledger/src/bench"
	"github.com/elee1766/chatledger/src/config"
	"github.com/elee1766/chatledger/src/llmclient"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitNotFound    = 5 // Requested record does not exist
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
	ExitUnavailable = 9 // Server or provider unavailable
)

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var validationErr config.ValidationError
	var apiErr *apiclient.APIError
	var netErr net.Error

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.As(err, &validationErr):
		return ExitConfig
	case errors.Is(err, llmclient.ErrNoAPIKey):
		return ExitAuth
	case errors.Is(err, bench.ErrScenarioNotFound):
		return ExitNotFound
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return ExitNotFound
		case apiErr.StatusCode == http.StatusBadRequest:
			return ExitUsage
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			return ExitAuth
		case apiErr.StatusCode >= 500:
			return ExitUnavailable
		}
		return ExitError
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return ExitTimeout
		}
		return ExitNetwork
	default:
		return ExitError
	}
}
