package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elee1766/chatledger/src/storage"
)

// TracesResponse is returned by GET /traces
type TracesResponse struct {
	Traces []storage.Trace `json:"traces"`
	Count  int             `json:"count"`
}

// ListTraces returns traces newest first.
// GET /traces?limit=50&offset=0&session_id=
func (h *Handler) ListTraces(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50, 1, 500)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	offset, err := queryInt(c, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	traces, err := h.ledger.ListTraces(c.Request().Context(), limit, offset, c.QueryParam("session_id"))
	if err != nil {
		return h.fail(c, "list traces", err)
	}
	return c.JSON(http.StatusOK, TracesResponse{Traces: traces, Count: len(traces)})
}

// GetTrace returns one trace.
// GET /traces/:id
func (h *Handler) GetTrace(c echo.Context) error {
	trace, err := h.ledger.GetTrace(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "get trace", err)
	}
	if trace == nil {
		return jsonError(c, http.StatusNotFound, "trace not found")
	}
	return c.JSON(http.StatusOK, trace)
}

// RateRequest is the body of POST /traces/:id/rate
type RateRequest struct {
	Score *int    `json:"score" validate:"required"`
	Note  *string `json:"note"`
}

// RateTrace attaches a rating to a trace, replacing any earlier rating.
// POST /traces/:id/rate
func (h *Handler) RateTrace(c echo.Context) error {
	var req RateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rating, err := h.ledger.RateTrace(c.Request().Context(), c.Param("id"), *req.Score, req.Note)
	if err != nil {
		return h.fail(c, "rate trace", err)
	}
	if rating == nil {
		return jsonError(c, http.StatusNotFound, "trace not found")
	}
	return c.JSON(http.StatusOK, rating)
}

// PerformanceStats aggregates every trace.
// GET /traces/stats
func (h *Handler) PerformanceStats(c echo.Context) error {
	stats, err := h.ledger.PerformanceStats(c.Request().Context())
	if err != nil {
		return h.fail(c, "get performance stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RollupsResponse is returned by GET /traces/rollups
type RollupsResponse struct {
	Rollups []storage.Rollup `json:"rollups"`
}

// ListRollups returns hourly buckets, newest first.
// GET /traces/rollups?since=<rfc3339>
func (h *Handler) ListRollups(c echo.Context) error {
	since, err := queryTime(c, "since")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	rollups, err := h.ledger.ListRollups(c.Request().Context(), since)
	if err != nil {
		return h.fail(c, "list rollups", err)
	}
	return c.JSON(http.StatusOK, RollupsResponse{Rollups: rollups})
}
