package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/chatledger/src/aisdk"
	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/httpapi"
	"github.com/elee1766/chatledger/src/ledger"
)

type echoModel struct{}

func (echoModel) Provider() string { return "openrouter" }

func (echoModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	last := req.Messages[len(req.Messages)-1]
	return &aisdk.ChatCompletionResponse{
		Choices: []aisdk.Choice{{Message: aisdk.Message{Role: aisdk.RoleAssistant, Content: "you said: " + last.Content}}},
	}, nil
}

func newTestServer(t *testing.T) *Client {
	t.Helper()
	l, err := ledger.Open(context.Background(), ":memory:", ledger.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	defaults := chat.Defaults{Provider: "openrouter", Model: "m", ContextMessages: 2}
	svc := chat.NewService(chat.ServiceConfig{
		Ledger: l,
		Clients: chat.ClientSourceFunc(func(string) (aisdk.ChatClient, error) {
			return echoModel{}, nil
		}),
		Defaults: defaults,
	})
	h := httpapi.NewHandler(httpapi.HandlerConfig{Ledger: l, Chat: svc, Defaults: defaults})

	srv := httptest.NewServer(httpapi.NewServer(h))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestChatAndHistory(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	start, err := c.StartSession(ctx, httpapi.StartSessionRequest{Note: "client test"})
	require.NoError(t, err)
	require.NotEmpty(t, start.SessionID)

	reply, err := c.Chat(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "you said: hello", reply.Response)

	page, err := c.History(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.False(t, page.HasMore)

	active, err := c.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, start.SessionID, active)

	traces, err := c.ListTraces(ctx, 10, 0, start.SessionID)
	require.NoError(t, err)
	require.Len(t, traces, 1)

	rating, err := c.RateTrace(ctx, traces[0].ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Score)

	result, err := c.Archive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.ArchivedCount)

	found, err := c.SearchMessages(ctx, ledger.SearchQuery{Query: "hello"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.Total)
}

func TestErrorsCarryServerMessage(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	_, err := c.GetTrace(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = c.Chat(ctx, "  ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestBenchEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	run, err := c.CreateBenchRun(ctx, httpapi.CreateBenchRunRequest{ScenarioID: "s1", Provider: "openrouter", Model: "m"})
	require.NoError(t, err)

	require.NoError(t, c.AddBenchTurn(ctx, run.ID, httpapi.BenchTurnRequest{Idx: 0, Role: "user", Content: "hi"}))
	require.NoError(t, c.AddBenchProbe(ctx, run.ID, httpapi.BenchProbeRequest{Idx: 0, ProbeID: "p1", Score: 1}))
	require.NoError(t, c.SetBenchScores(ctx, run.ID, map[string]float64{"score_overall": 1}))

	done, err := c.FinalizeBenchRun(ctx, run.ID, map[string]interface{}{"probes": 1})
	require.NoError(t, err)
	assert.NotNil(t, done.EndedAt)

	detail, err := c.GetBenchRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Turns, 1)
	assert.Equal(t, 1.0, detail.Scores["score_overall"])

	rows, err := c.BenchSummary(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	err = c.AddBenchTurn(ctx, "missing", httpapi.BenchTurnRequest{Role: "user"})
	assert.True(t, IsNotFound(err))
}

func TestRetriesRetryableReads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"transaction failed","retryable":true}`))
			return
		}
		w.Write([]byte(`{"total_messages":3}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RetryCount: 2})
	stats, err := c.MessageStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalMessages)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"transaction failed","retryable":true}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RetryCount: 2})
	_, err := c.Archive(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Retryable)
	assert.EqualValues(t, 1, calls.Load())
}
