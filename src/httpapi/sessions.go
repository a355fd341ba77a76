package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/storage"
)

// StartSessionRequest is the body of POST /sessions. Omitted fields take the
// server's configured defaults.
type StartSessionRequest struct {
	Note            string `json:"note"`
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	ContextMessages *int   `json:"context_messages" validate:"omitempty,min=0"`
}

// StartSession closes the active session and opens a new one.
// POST /sessions
func (h *Handler) StartSession(c echo.Context) error {
	var req StartSessionRequest
	// an empty body starts a session with the server defaults
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := ledger.StartSessionInput{
		SessionConfig: storage.SessionConfig{
			Provider:        h.defaults.Provider,
			Model:           h.defaults.Model,
			ContextMessages: h.defaults.ContextMessages,
		},
		Note: req.Note,
	}
	if req.Provider != "" {
		input.Provider = req.Provider
	}
	if req.Model != "" {
		input.Model = req.Model
	}
	if req.ContextMessages != nil {
		input.ContextMessages = *req.ContextMessages
	}

	result, err := h.ledger.StartSession(c.Request().Context(), input)
	if err != nil {
		return h.fail(c, "start session", err)
	}

	h.logger.Info("session started", "session_id", result.SessionID, "provider", input.Provider, "model", input.Model)
	return c.JSON(http.StatusCreated, result)
}

// SessionsResponse is returned by GET /sessions
type SessionsResponse struct {
	Sessions []storage.SessionSummary `json:"sessions"`
}

// ListSessions returns every session, newest first.
// GET /sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.ledger.ListSessions(c.Request().Context())
	if err != nil {
		return h.fail(c, "list sessions", err)
	}
	return c.JSON(http.StatusOK, SessionsResponse{Sessions: sessions})
}

// ActiveSessionResponse is returned by GET /sessions/active
type ActiveSessionResponse struct {
	SessionID *string `json:"session_id"`
}

// ActiveSession returns the id of the open session, or null.
// GET /sessions/active
func (h *Handler) ActiveSession(c echo.Context) error {
	id, ok, err := h.ledger.ActiveSessionID(c.Request().Context())
	if err != nil {
		return h.fail(c, "get active session", err)
	}
	var resp ActiveSessionResponse
	if ok {
		resp.SessionID = &id
	}
	return c.JSON(http.StatusOK, resp)
}
