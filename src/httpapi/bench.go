package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elee1766/chatledger/src/storage"
)

// CreateBenchRunRequest is the body of POST /bench/runs
type CreateBenchRunRequest struct {
	ScenarioID      string `json:"scenario_id" validate:"required"`
	Title           string `json:"title"`
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	ContextMessages int    `json:"context_messages" validate:"min=0"`
	Notes           string `json:"notes"`
}

// CreateBenchRun records the start of a benchmark run.
// POST /bench/runs
func (h *Handler) CreateBenchRun(c echo.Context) error {
	var req CreateBenchRunRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	run, err := h.ledger.CreateBenchRun(c.Request().Context(), storage.BenchRun{
		ScenarioID:      req.ScenarioID,
		Title:           req.Title,
		Provider:        req.Provider,
		Model:           req.Model,
		ContextMessages: req.ContextMessages,
		Notes:           req.Notes,
	})
	if err != nil {
		return h.fail(c, "create bench run", err)
	}
	return c.JSON(http.StatusCreated, run)
}

// BenchTurnRequest is the body of POST /bench/runs/:id/turns
type BenchTurnRequest struct {
	Idx       int     `json:"idx" validate:"min=0"`
	Role      string  `json:"role" validate:"required"`
	Content   string  `json:"content"`
	Response  string  `json:"response"`
	LatencyMs float64 `json:"latency_ms" validate:"min=0"`
	TraceID   *string `json:"trace_id"`
}

// AddBenchTurn stores one replayed turn.
// POST /bench/runs/:id/turns
func (h *Handler) AddBenchTurn(c echo.Context) error {
	var req BenchTurnRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.ledger.AddBenchTurn(c.Request().Context(), storage.BenchTurn{
		RunID:     c.Param("id"),
		Idx:       req.Idx,
		Role:      req.Role,
		Content:   req.Content,
		Response:  req.Response,
		LatencyMs: req.LatencyMs,
		TraceID:   req.TraceID,
	})
	if err != nil {
		return h.fail(c, "add bench turn", err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "ok"})
}

// BenchProbeRequest is the body of POST /bench/runs/:id/probes
type BenchProbeRequest struct {
	Idx       int                `json:"idx" validate:"min=0"`
	ProbeID   string             `json:"probe_id" validate:"required"`
	ProbeType string             `json:"probe_type"`
	Question  string             `json:"question"`
	Expected  storage.JSONObject `json:"expected"`
	Response  string             `json:"response"`
	Score     float64            `json:"score" validate:"min=0,max=1"`
	Metrics   storage.JSONObject `json:"metrics"`
}

// AddBenchProbe stores one scored probe.
// POST /bench/runs/:id/probes
func (h *Handler) AddBenchProbe(c echo.Context) error {
	var req BenchProbeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.ledger.AddBenchProbe(c.Request().Context(), storage.BenchProbe{
		RunID:     c.Param("id"),
		Idx:       req.Idx,
		ProbeID:   req.ProbeID,
		ProbeType: req.ProbeType,
		Question:  req.Question,
		Expected:  req.Expected,
		Response:  req.Response,
		Score:     req.Score,
		Metrics:   req.Metrics,
	})
	if err != nil {
		return h.fail(c, "add bench probe", err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "ok"})
}

// ScoresRequest is the body of PUT /bench/runs/:id/scores
type ScoresRequest struct {
	Scores map[string]float64 `json:"scores" validate:"required"`
}

// SetBenchScores upserts metric scores of a run.
// PUT /bench/runs/:id/scores
func (h *Handler) SetBenchScores(c echo.Context) error {
	var req ScoresRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.ledger.SetBenchScores(c.Request().Context(), c.Param("id"), req.Scores); err != nil {
		return h.fail(c, "set bench scores", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// FinalizeRequest is the body of POST /bench/runs/:id/finalize
type FinalizeRequest struct {
	Summary storage.JSONObject `json:"summary"`
}

// FinalizeBenchRun stamps the end of a run.
// POST /bench/runs/:id/finalize
func (h *Handler) FinalizeBenchRun(c echo.Context) error {
	var req FinalizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	run, err := h.ledger.FinalizeBenchRun(c.Request().Context(), c.Param("id"), req.Summary)
	if err != nil {
		return h.fail(c, "finalize bench run", err)
	}
	return c.JSON(http.StatusOK, run)
}

// BenchRunsResponse is returned by GET /bench/runs
type BenchRunsResponse struct {
	Runs []storage.BenchRun `json:"runs"`
}

// ListBenchRuns returns the newest runs.
// GET /bench/runs?limit=20
func (h *Handler) ListBenchRuns(c echo.Context) error {
	limit, err := queryInt(c, "limit", 20, 1, 500)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	runs, err := h.ledger.ListBenchRuns(c.Request().Context(), limit)
	if err != nil {
		return h.fail(c, "list bench runs", err)
	}
	return c.JSON(http.StatusOK, BenchRunsResponse{Runs: runs})
}

// GetBenchRun returns a run with its turns, probes and scores.
// GET /bench/runs/:id
func (h *Handler) GetBenchRun(c echo.Context) error {
	detail, err := h.ledger.GetBenchRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "get bench run", err)
	}
	if detail == nil {
		return jsonError(c, http.StatusNotFound, "bench run not found")
	}
	return c.JSON(http.StatusOK, detail)
}

// BenchSummaryResponse is returned by GET /bench/summary
type BenchSummaryResponse struct {
	Rows []storage.BenchSummaryRow `json:"rows"`
}

// BenchSummary returns every score joined with its run.
// GET /bench/summary
func (h *Handler) BenchSummary(c echo.Context) error {
	rows, err := h.ledger.BenchSummary(c.Request().Context())
	if err != nil {
		return h.fail(c, "summarize bench runs", err)
	}
	return c.JSON(http.StatusOK, BenchSummaryResponse{Rows: rows})
}
