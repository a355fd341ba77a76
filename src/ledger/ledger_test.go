package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/chatledger/src/storage"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// steppingClock returns a clock advancing by step on every reading
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

func newTestLedger(t *testing.T, now func() time.Time) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), ":memory:", Config{Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func defaultConfig() StartSessionInput {
	return StartSessionInput{
		SessionConfig: storage.SessionConfig{Provider: "openrouter", Model: "test-model", ContextMessages: 20},
	}
}

func TestClockIsStrictlyIncreasing(t *testing.T) {
	c := NewClock(func() time.Time { return baseTime })
	first := c.Now()
	second := c.Now()
	assert.True(t, second.After(first))
	assert.Equal(t, time.Microsecond, second.Sub(first))

	c.Observe(baseTime.Add(time.Hour))
	assert.True(t, c.Now().After(baseTime.Add(time.Hour)))
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()

	var nilLedger *Ledger
	_, err := nilLedger.AppendMessage(ctx, storage.RoleUser, "hi")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = New(ctx, Config{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	l := newTestLedger(t, nil)
	require.NoError(t, l.Close())
	_, err = l.GetHistory(ctx, 10, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, _, err = l.ActiveSessionID(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = l.RecordTrace(ctx, TraceInput{Provider: "p", Model: "m"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	l := newTestLedger(t, nil)
	_, err := l.AppendMessage(context.Background(), "system", "hello")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.True(t, IsArgumentError(err))
}

func TestGetHistoryPagination(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	var written []*storage.Message
	for _, role := range []string{storage.RoleUser, storage.RoleAssistant, storage.RoleUser} {
		m, err := l.AppendMessage(ctx, role, "turn "+role)
		require.NoError(t, err)
		written = append(written, m)
	}

	page, err := l.GetHistory(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, written[2].ID, page.Messages[0].ID)
	assert.Equal(t, written[1].ID, page.Messages[1].ID)
	require.NotNil(t, page.NextCursor)
	assert.True(t, page.NextCursor.Equal(written[1].Timestamp))

	next, err := l.GetHistory(ctx, 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, written[0].ID, next.Messages[0].ID)
	assert.False(t, next.HasMore)
	assert.Nil(t, next.NextCursor)

	_, err = l.GetHistory(ctx, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestGetHistorySortedAndBounded(t *testing.T) {
	ctx := context.Background()
	// a frozen wall clock still yields distinct ordered timestamps
	l := newTestLedger(t, func() time.Time { return baseTime })

	for i := 0; i < 7; i++ {
		_, err := l.AppendMessage(ctx, storage.RoleUser, "m")
		require.NoError(t, err)
	}

	for _, limit := range []int{1, 5, 7, 50} {
		page, err := l.GetHistory(ctx, limit, nil)
		require.NoError(t, err)
		assert.Len(t, page.Messages, min(limit, 7))
		for i := 1; i < len(page.Messages); i++ {
			assert.True(t, page.Messages[i-1].Timestamp.After(page.Messages[i].Timestamp))
		}
	}
}

func TestContextWindowIsChronological(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	for _, content := range []string{"a", "b", "c", "d"} {
		_, err := l.AppendMessage(ctx, storage.RoleUser, content)
		require.NoError(t, err)
	}

	window, err := l.ContextWindow(ctx, 3)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, "b", window[0].Content)
	assert.Equal(t, "d", window[2].Content)

	empty, err := l.ContextWindow(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStartSessionTransition(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	a, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	assert.Nil(t, a.EndedSession)

	for _, role := range []string{storage.RoleUser, storage.RoleAssistant} {
		_, err := l.AppendMessage(ctx, role, "hello")
		require.NoError(t, err)
	}

	input := defaultConfig()
	input.Model = "other-model"
	input.Note = "second"
	b, err := l.StartSession(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, b.EndedSession)
	assert.Equal(t, a.SessionID, b.EndedSession.ID)
	assert.Equal(t, int64(2), b.EndedSession.MessageCount)
	assert.Equal(t, "other-model", b.ConfigSnapshot.Model)

	page, err := l.GetHistory(ctx, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	db, err := l.store()
	require.NoError(t, err)
	archived, err := storage.ListArchivedMessages(ctx, db.DB(), a.SessionID)
	require.NoError(t, err)
	assert.Len(t, archived, 2)

	id, ok, err := l.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, b.SessionID, id)

	sessions, err := l.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, b.SessionID, sessions[0].ID)
	assert.True(t, sessions[0].IsActive)
	assert.Equal(t, "second", sessions[0].Note)
	assert.Equal(t, a.SessionID, sessions[1].ID)
	assert.False(t, sessions[1].IsActive)
	assert.Equal(t, int64(2), sessions[1].MessageCount)
}

func TestStartSessionArchivesLegacyMessagesUntagged(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	_, err := l.AppendMessage(ctx, storage.RoleUser, "before any session")
	require.NoError(t, err)

	start, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	assert.Nil(t, start.EndedSession)

	db, err := l.store()
	require.NoError(t, err)
	untagged, err := storage.CountArchivedMessages(ctx, db.DB(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), untagged)
}

func TestStartSessionKeepsOneActive(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.StartSession(ctx, defaultConfig())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	db, err := l.store()
	require.NoError(t, err)
	active, err := storage.CountActiveSessions(ctx, db.DB())
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	sessions, err := l.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 8)
}

func TestStartSessionRollsBack(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	a, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	_, err = l.AppendMessage(ctx, storage.RoleUser, "keep me")
	require.NoError(t, err)

	db, err := l.store()
	require.NoError(t, err)
	_, err = db.DB().ExecContext(ctx, `CREATE TRIGGER fail_archive BEFORE INSERT ON archived_messages
		BEGIN SELECT RAISE(ABORT, 'archive unavailable'); END`)
	require.NoError(t, err)

	_, err = l.StartSession(ctx, defaultConfig())
	_, dropErr := db.DB().ExecContext(ctx, `DROP TRIGGER fail_archive`)
	require.NoError(t, dropErr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	var txErr *TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.True(t, txErr.Retryable())
	assert.Equal(t, "start_session", txErr.Op)

	id, ok, err := l.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.SessionID, id)

	live, err := storage.CountMessages(ctx, db.DB())
	require.NoError(t, err)
	assert.Equal(t, int64(1), live)

	sessions, err := l.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(1), sessions[0].MessageCount)

	archived, err := storage.CountArchivedMessages(ctx, db.DB(), &a.SessionID)
	require.NoError(t, err)
	assert.Zero(t, archived)
}

func TestStartSessionValidatesInput(t *testing.T) {
	l := newTestLedger(t, nil)
	_, err := l.StartSession(context.Background(), StartSessionInput{})
	assert.ErrorIs(t, err, ErrProviderMissing)

	input := defaultConfig()
	input.ContextMessages = -1
	_, err = l.StartSession(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidContext)
}

func TestArchiveAllKeepsSessionOpen(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	start, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := l.AppendMessage(ctx, storage.RoleUser, "x")
		require.NoError(t, err)
	}

	result, err := l.ArchiveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ArchivedCount)

	id, ok, err := l.ActiveSessionID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, start.SessionID, id)

	db, err := l.store()
	require.NoError(t, err)
	tagged, err := storage.CountArchivedMessages(ctx, db.DB(), &start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tagged)

	again, err := l.ArchiveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.ArchivedCount)
}

func latencyTrace(latency float64) TraceInput {
	return TraceInput{
		Provider:      "openrouter",
		Model:         "test-model",
		RawMessagesIn: storage.ChatMessages{{Role: "user", Content: "hi"}},
		ResponseOut:   "hello",
		LatencyMs:     latency,
	}
}

func TestRecordTraceUpdatesRollup(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Minute))

	for _, latency := range []float64{100, 200, 300} {
		_, err := l.RecordTrace(ctx, latencyTrace(latency))
		require.NoError(t, err)
	}

	rollups, err := l.ListRollups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, int64(3), rollups[0].CallCount)
	assert.InDelta(t, 200, rollups[0].AvgLatencyMs, 1e-9)
	assert.True(t, rollups[0].PeriodStart.Equal(baseTime))
}

func TestConcurrentTracesKeepExactMean(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, func() time.Time { return baseTime })

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(latency float64) {
			defer wg.Done()
			_, err := l.RecordTrace(ctx, latencyTrace(latency))
			assert.NoError(t, err)
		}(float64(i))
	}
	wg.Wait()

	rollups, err := l.ListRollups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.Equal(t, int64(20), rollups[0].CallCount)
	assert.InDelta(t, 10.5, rollups[0].AvgLatencyMs, 1e-9)
}

func TestRecordTraceValidates(t *testing.T) {
	l := newTestLedger(t, nil)
	_, err := l.RecordTrace(context.Background(), latencyTrace(-1))
	assert.ErrorIs(t, err, ErrInvalidLatency)

	in := latencyTrace(1)
	in.CompletionTokens = ptr(int64(-5))
	_, err = l.RecordTrace(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidTokens)
}

func TestRecordTraceRollsBackWithRollup(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, nil)

	db, err := l.store()
	require.NoError(t, err)
	_, err = db.DB().ExecContext(ctx, `DROP TABLE trace_rollups`)
	require.NoError(t, err)

	_, err = l.RecordTrace(ctx, latencyTrace(10))
	assert.ErrorIs(t, err, ErrTransaction)

	traces, err := l.ListTraces(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Empty(t, traces)
}

func TestTracesAndRatings(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	session := "s1"
	first := latencyTrace(1000)
	first.CompletionTokens = ptr(int64(50))
	first.SessionID = &session
	firstID, err := l.RecordTrace(ctx, first)
	require.NoError(t, err)

	second := latencyTrace(500)
	second.Provider = "ollama"
	secondID, err := l.RecordTrace(ctx, second)
	require.NoError(t, err)

	all, err := l.ListTraces(ctx, 10, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, secondID, all[0].ID)

	scoped, err := l.ListTraces(ctx, 10, 0, session)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, firstID, scoped[0].ID)

	missing, err := l.RateTrace(ctx, "unknown", 5, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = l.RateTrace(ctx, firstID, 2, ptr("meh"))
	require.NoError(t, err)
	rating, err := l.RateTrace(ctx, firstID, 4, nil)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 4, rating.Score)

	trace, err := l.GetTrace(ctx, firstID)
	require.NoError(t, err)
	require.NotNil(t, trace.RatingScore)
	assert.Equal(t, 4, *trace.RatingScore)
	assert.Nil(t, trace.RatingNote)

	stats, err := l.PerformanceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCalls)
	require.NotNil(t, stats.AvgTokensPerSec)
	assert.Equal(t, 50.0, *stats.AvgTokensPerSec)
	assert.Equal(t, 750.0, stats.AvgLatencyMs)
	require.NotNil(t, stats.AvgRating)
	assert.Equal(t, 4.0, *stats.AvgRating)
	require.Contains(t, stats.ByProvider, "ollama")
	assert.Nil(t, stats.ByProvider["ollama"].AvgRating)
	assert.Equal(t, int64(1), stats.ByProvider["openrouter"].Calls)
}

func TestPerformanceStatsEmpty(t *testing.T) {
	l := newTestLedger(t, nil)
	stats, err := l.PerformanceStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCalls)
	assert.Nil(t, stats.AvgTokensPerSec)
	assert.Nil(t, stats.AvgRating)
	assert.Empty(t, stats.ByProvider)
}

func TestPerformanceStatsWithoutThroughputData(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	_, err := l.RecordTrace(ctx, latencyTrace(0))
	require.NoError(t, err)
	noUsage := latencyTrace(250)
	_, err = l.RecordTrace(ctx, noUsage)
	require.NoError(t, err)

	stats, err := l.PerformanceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCalls)
	assert.Nil(t, stats.AvgTokensPerSec, "no trace has completion tokens and a positive latency")
}

func TestSearchMessagesAcrossSources(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	_, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := l.AppendMessage(ctx, storage.RoleUser, "Old topic")
		require.NoError(t, err)
	}
	_, err = l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := l.AppendMessage(ctx, storage.RoleAssistant, "new topic")
		require.NoError(t, err)
	}

	all, err := l.SearchMessages(ctx, SearchQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Total)
	require.Len(t, all.Messages, 5)
	assert.Equal(t, storage.SourceLive, all.Messages[0].Source)
	assert.Equal(t, storage.SourceArchive, all.Messages[4].Source)

	var seen []string
	for offset := 0; offset < 5; offset += 2 {
		page, err := l.SearchMessages(ctx, SearchQuery{Limit: 2, Offset: offset})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Total)
		for _, m := range page.Messages {
			seen = append(seen, m.ID)
		}
	}
	require.Len(t, seen, 5)
	for i, m := range all.Messages {
		assert.Equal(t, m.ID, seen[i])
	}

	old, err := l.SearchMessages(ctx, SearchQuery{Limit: 10, Query: "OLD"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), old.Total)

	assistant, err := l.SearchMessages(ctx, SearchQuery{Limit: 1, Role: storage.RoleAssistant})
	require.NoError(t, err)
	assert.Equal(t, int64(2), assistant.Total)
	assert.Len(t, assistant.Messages, 1)

	beyond, err := l.SearchMessages(ctx, SearchQuery{Limit: 10, Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, beyond.Messages)
	assert.Equal(t, int64(5), beyond.Total)

	_, err = l.SearchMessages(ctx, SearchQuery{Limit: 10, Role: "system"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestMessageStatsCountsTodayFromLiveLog(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	_, err := l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	_, err = l.AppendMessage(ctx, storage.RoleUser, "archived today")
	require.NoError(t, err)
	_, err = l.StartSession(ctx, defaultConfig())
	require.NoError(t, err)
	first, err := l.AppendMessage(ctx, storage.RoleUser, "live")
	require.NoError(t, err)
	last, err := l.AppendMessage(ctx, storage.RoleAssistant, "live reply")
	require.NoError(t, err)

	stats, err := l.MessageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMessages)
	assert.Equal(t, int64(2), stats.UserMessages)
	assert.Equal(t, int64(1), stats.AssistantMessages)
	assert.Equal(t, int64(2), stats.MessagesToday)
	require.NotNil(t, stats.LastMessageAt)
	assert.True(t, stats.LastMessageAt.Equal(last.Timestamp))
	require.NotNil(t, stats.FirstMessageAt)
	assert.True(t, stats.FirstMessageAt.Before(first.Timestamp))
}

func TestBenchRunLifecycle(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, steppingClock(baseTime, time.Second))

	_, err := l.CreateBenchRun(ctx, storage.BenchRun{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	run, err := l.CreateBenchRun(ctx, storage.BenchRun{ScenarioID: "s1", Provider: "openrouter", Model: "m"})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	require.NoError(t, l.AddBenchTurn(ctx, storage.BenchTurn{RunID: run.ID, Idx: 0, Role: "user", Content: "hi", Response: "hello"}))
	require.NoError(t, l.AddBenchProbe(ctx, storage.BenchProbe{RunID: run.ID, Idx: 0, ProbeID: "p1", ProbeType: "recall", Score: 1}))
	require.NoError(t, l.SetBenchScores(ctx, run.ID, map[string]float64{"score_overall": 0.5}))
	require.NoError(t, l.SetBenchScores(ctx, run.ID, map[string]float64{"score_overall": 1}))

	err = l.AddBenchTurn(ctx, storage.BenchTurn{RunID: "missing"})
	assert.ErrorIs(t, err, ErrBenchRunNotFound)

	finished, err := l.FinalizeBenchRun(ctx, run.ID, storage.JSONObject{"score_overall": 1.0})
	require.NoError(t, err)
	require.NotNil(t, finished.EndedAt)

	_, err = l.FinalizeBenchRun(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrBenchRunNotFound)

	detail, err := l.GetBenchRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Len(t, detail.Turns, 1)
	assert.Len(t, detail.Probes, 1)
	assert.Equal(t, 1.0, detail.Scores["score_overall"])

	runs, err := l.ListBenchRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	summary, err := l.BenchSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "score_overall", summary[0].Metric)
}

func TestReopenKeepsClockAhead(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/ledger.db"

	future := baseTime.Add(48 * time.Hour)
	l, err := Open(ctx, path, Config{Now: func() time.Time { return future }})
	require.NoError(t, err)
	m, err := l.AppendMessage(ctx, storage.RoleUser, "from the future")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(ctx, path, Config{Now: func() time.Time { return baseTime }})
	require.NoError(t, err)
	defer l.Close()
	next, err := l.AppendMessage(ctx, storage.RoleUser, "after restart")
	require.NoError(t, err)
	assert.True(t, next.Timestamp.After(m.Timestamp))

	stats, err := l.MessageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalMessages)
	require.NotNil(t, stats.FirstMessageAt)
	assert.True(t, stats.FirstMessageAt.Equal(m.Timestamp))
	assert.Equal(t, time.UTC, stats.FirstMessageAt.Location())

	page, err := l.GetHistory(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, time.UTC, page.Messages[0].Timestamp.Location())
}

func ptr[T any](v T) *T {
	return &v
}
