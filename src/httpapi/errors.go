package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/ledger"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

var errChatUnavailable = errors.New("chat provider is not configured")

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Error: message})
}

// fail maps ledger, chat and validation errors to a status code
func (h *Handler) fail(c echo.Context, op string, err error) error {
	var provErr *chat.ProviderError
	var txErr *ledger.TransactionError
	var valErrs validator.ValidationErrors

	switch {
	case ledger.IsArgumentError(err), errors.Is(err, chat.ErrEmptyMessage), errors.As(err, &valErrs):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrBenchRunNotFound):
		return jsonError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &provErr):
		h.logger.Warn("provider call failed", "op", op, "provider", provErr.Provider, "error", provErr.Err)
		return jsonError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, errChatUnavailable), errors.Is(err, chat.ErrNoClient):
		return jsonError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &txErr):
		h.logger.Error("transaction rolled back", "op", op, "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Retryable: txErr.Retryable()})
	default:
		h.logger.Error("request failed", "op", op, "error", err)
		return jsonError(c, http.StatusInternalServerError, fmt.Sprintf("failed to %s", op))
	}
}

// bindAndValidate decodes the body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	return nil
}

// queryInt parses an integer query parameter within [min, max]
func queryInt(c echo.Context, name string, def, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}

// queryTime parses an optional RFC 3339 timestamp
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
	}
	t = t.UTC()
	return &t, nil
}

// httpErrorHandler renders echo errors (unknown routes, bad methods) in the API's error shape
func (h *Handler) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		h.logger.Error("unhandled error", "error", err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = jsonError(c, status, message)
	}
	if err != nil {
		h.logger.Error("failed to write error response", "error", err)
	}
}
