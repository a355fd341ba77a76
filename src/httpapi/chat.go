package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Chat answers one user message.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	if h.chat == nil {
		return h.fail(c, "send chat message", errChatUnavailable)
	}

	var req ChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.chat.Send(c.Request().Context(), req.Message)
	if err != nil {
		return h.fail(c, "send chat message", err)
	}
	return c.JSON(http.StatusOK, reply)
}

// History returns the newest live messages, paged backwards by timestamp.
// GET /chat/history?limit=20&before=<rfc3339>
func (h *Handler) History(c echo.Context) error {
	limit, err := queryInt(c, "limit", 20, 1, 100)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	before, err := queryTime(c, "before")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	page, err := h.ledger.GetHistory(c.Request().Context(), limit, before)
	if err != nil {
		return h.fail(c, "get history", err)
	}
	return c.JSON(http.StatusOK, page)
}

// Archive moves the live log into the archive without closing the session.
// POST /chat/archive
func (h *Handler) Archive(c echo.Context) error {
	result, err := h.ledger.ArchiveAll(c.Request().Context())
	if err != nil {
		return h.fail(c, "archive messages", err)
	}
	return c.JSON(http.StatusOK, result)
}
