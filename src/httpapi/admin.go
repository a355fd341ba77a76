package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elee1766/chatledger/src/ledger"
)

// SearchMessages searches the live log and the archive together.
// GET /admin/messages?limit=50&offset=0&role=&q=
func (h *Handler) SearchMessages(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50, 1, 500)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	offset, err := queryInt(c, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	page, err := h.ledger.SearchMessages(c.Request().Context(), ledger.SearchQuery{
		Limit:  limit,
		Offset: offset,
		Role:   c.QueryParam("role"),
		Query:  c.QueryParam("q"),
	})
	if err != nil {
		return h.fail(c, "search messages", err)
	}
	return c.JSON(http.StatusOK, page)
}

// MessageStats returns counts over both message sources.
// GET /admin/stats
func (h *Handler) MessageStats(c echo.Context) error {
	stats, err := h.ledger.MessageStats(c.Request().Context())
	if err != nil {
		return h.fail(c, "get message stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}
