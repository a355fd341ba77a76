package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/httpapi"
	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/storage"
)

func (c *Client) Health(ctx context.Context) (*httpapi.HealthResponse, error) {
	return call[httpapi.HealthResponse](ctx, c, http.MethodGet, "/health", nil, nil)
}

// Chat sends one user message and returns the assistant reply
func (c *Client) Chat(ctx context.Context, message string) (*chat.Reply, error) {
	return call[chat.Reply](ctx, c, http.MethodPost, "/chat", httpapi.ChatRequest{Message: message}, nil)
}

// History returns a page of the live log; limit 0 uses the server default
func (c *Client) History(ctx context.Context, limit int, before *time.Time) (*ledger.HistoryPage, error) {
	return call[ledger.HistoryPage](ctx, c, http.MethodGet, "/chat/history", nil,
		params("limit", itoa(limit), "before", formatTime(before)))
}

func (c *Client) Archive(ctx context.Context) (*ledger.ArchiveResult, error) {
	return call[ledger.ArchiveResult](ctx, c, http.MethodPost, "/chat/archive", nil, nil)
}

// StartSession opens a new session; empty request fields take the server defaults
func (c *Client) StartSession(ctx context.Context, req httpapi.StartSessionRequest) (*ledger.SessionStart, error) {
	return call[ledger.SessionStart](ctx, c, http.MethodPost, "/sessions", req, nil)
}

func (c *Client) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	resp, err := call[httpapi.SessionsResponse](ctx, c, http.MethodGet, "/sessions", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// ActiveSession returns the open session id, or "" when there is none
func (c *Client) ActiveSession(ctx context.Context) (string, error) {
	resp, err := call[httpapi.ActiveSessionResponse](ctx, c, http.MethodGet, "/sessions/active", nil, nil)
	if err != nil {
		return "", err
	}
	if resp.SessionID == nil {
		return "", nil
	}
	return *resp.SessionID, nil
}

func (c *Client) SearchMessages(ctx context.Context, q ledger.SearchQuery) (*ledger.SearchPage, error) {
	return call[ledger.SearchPage](ctx, c, http.MethodGet, "/admin/messages", nil,
		params("limit", itoa(q.Limit), "offset", itoa(q.Offset), "role", q.Role, "q", q.Query))
}

func (c *Client) MessageStats(ctx context.Context) (*storage.MessageStats, error) {
	return call[storage.MessageStats](ctx, c, http.MethodGet, "/admin/stats", nil, nil)
}

func (c *Client) ListTraces(ctx context.Context, limit, offset int, sessionID string) ([]storage.Trace, error) {
	resp, err := call[httpapi.TracesResponse](ctx, c, http.MethodGet, "/traces", nil,
		params("limit", itoa(limit), "offset", itoa(offset), "session_id", sessionID))
	if err != nil {
		return nil, err
	}
	return resp.Traces, nil
}

func (c *Client) GetTrace(ctx context.Context, traceID string) (*storage.Trace, error) {
	return call[storage.Trace](ctx, c, http.MethodGet, "/traces/"+url.PathEscape(traceID), nil, nil)
}

func (c *Client) RateTrace(ctx context.Context, traceID string, score int, note *string) (*storage.TraceRating, error) {
	body := httpapi.RateRequest{Score: &score, Note: note}
	return call[storage.TraceRating](ctx, c, http.MethodPost, "/traces/"+url.PathEscape(traceID)+"/rate", body, nil)
}

func (c *Client) PerformanceStats(ctx context.Context) (*storage.PerformanceStats, error) {
	return call[storage.PerformanceStats](ctx, c, http.MethodGet, "/traces/stats", nil, nil)
}

func (c *Client) ListRollups(ctx context.Context, since *time.Time) ([]storage.Rollup, error) {
	resp, err := call[httpapi.RollupsResponse](ctx, c, http.MethodGet, "/traces/rollups", nil, params("since", formatTime(since)))
	if err != nil {
		return nil, err
	}
	return resp.Rollups, nil
}

func (c *Client) CreateBenchRun(ctx context.Context, req httpapi.CreateBenchRunRequest) (*storage.BenchRun, error) {
	return call[storage.BenchRun](ctx, c, http.MethodPost, "/bench/runs", req, nil)
}

func (c *Client) AddBenchTurn(ctx context.Context, runID string, turn httpapi.BenchTurnRequest) error {
	_, err := call[map[string]string](ctx, c, http.MethodPost, benchPath(runID, "turns"), turn, nil)
	return err
}

func (c *Client) AddBenchProbe(ctx context.Context, runID string, probe httpapi.BenchProbeRequest) error {
	_, err := call[map[string]string](ctx, c, http.MethodPost, benchPath(runID, "probes"), probe, nil)
	return err
}

func (c *Client) SetBenchScores(ctx context.Context, runID string, scores map[string]float64) error {
	_, err := call[map[string]string](ctx, c, http.MethodPut, benchPath(runID, "scores"), httpapi.ScoresRequest{Scores: scores}, nil)
	return err
}

func (c *Client) FinalizeBenchRun(ctx context.Context, runID string, summary storage.JSONObject) (*storage.BenchRun, error) {
	return call[storage.BenchRun](ctx, c, http.MethodPost, benchPath(runID, "finalize"), httpapi.FinalizeRequest{Summary: summary}, nil)
}

func (c *Client) ListBenchRuns(ctx context.Context, limit int) ([]storage.BenchRun, error) {
	resp, err := call[httpapi.BenchRunsResponse](ctx, c, http.MethodGet, "/bench/runs", nil, params("limit", itoa(limit)))
	if err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

func (c *Client) GetBenchRun(ctx context.Context, runID string) (*storage.BenchRunDetail, error) {
	return call[storage.BenchRunDetail](ctx, c, http.MethodGet, benchPath(runID, ""), nil, nil)
}

func (c *Client) BenchSummary(ctx context.Context) ([]storage.BenchSummaryRow, error) {
	resp, err := call[httpapi.BenchSummaryResponse](ctx, c, http.MethodGet, "/bench/summary", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func benchPath(runID, action string) string {
	p := "/bench/runs/" + url.PathEscape(runID)
	if action != "" {
		p += "/" + action
	}
	return p
}
