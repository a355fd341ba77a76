package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const traceColumns = `id, timestamp, provider, model, system_prompt, context_messages, trigger_message,
	raw_messages_in, response_out, latency_ms, prompt_tokens, completion_tokens,
	rating_score, rating_note, session_id`

// CreateTrace inserts a trace. Rating fields are ignored; use RateTrace.
func CreateTrace(ctx context.Context, db Execer, trace *Trace) error {
	if trace.ID == "" {
		trace.ID = GenerateID()
	}
	if trace.Timestamp.IsZero() {
		trace.Timestamp = time.Now().UTC()
	}
	if trace.RawMessagesIn == nil {
		trace.RawMessagesIn = ChatMessages{}
	}
	trace.RatingScore = nil
	trace.RatingNote = nil

	query := `INSERT INTO traces (
		id, timestamp, provider, model, system_prompt, context_messages, trigger_message,
		raw_messages_in, response_out, latency_ms, prompt_tokens, completion_tokens, session_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		trace.ID, trace.Timestamp, trace.Provider, trace.Model, trace.SystemPrompt,
		trace.ContextMessages, trace.TriggerMessage, trace.RawMessagesIn, trace.ResponseOut,
		trace.LatencyMs, trace.PromptTokens, trace.CompletionTokens, trace.SessionID)
	return err
}

// GetTraceByID retrieves a trace by its ID
func GetTraceByID(ctx context.Context, db sqlscan.Querier, traceID string) (*Trace, error) {
	var t Trace
	err := sqlscan.Get(ctx, db, &t, `SELECT `+traceColumns+` FROM traces WHERE id = ?`, traceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	t.toUTC()
	return &t, nil
}

// ListTraces returns traces newest first, optionally scoped to one session
func ListTraces(ctx context.Context, db sqlscan.Querier, limit, offset int, sessionID string) ([]Trace, error) {
	query := `SELECT ` + traceColumns + ` FROM traces`
	args := []interface{}{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var traces []Trace
	if err := sqlscan.Select(ctx, db, &traces, query, args...); err != nil {
		return nil, err
	}
	allToUTC(traces)
	return traces, nil
}

// RateTrace overwrites the rating of a trace. It returns nil when the trace does not exist.
func RateTrace(ctx context.Context, db Execer, traceID string, score int, note *string) (*TraceRating, error) {
	res, err := db.ExecContext(ctx, `UPDATE traces SET rating_score = ?, rating_note = ? WHERE id = ?`, score, note, traceID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return &TraceRating{TraceID: traceID, Score: score, Note: note}, nil
}

// GetPerformanceStats aggregates every trace, overall and per provider
func GetPerformanceStats(ctx context.Context, db sqlscan.Querier) (*PerformanceStats, error) {
	query := `
	SELECT
		COUNT(*) AS total_calls,
		COALESCE(AVG(latency_ms), 0.0) AS avg_latency_ms,
		AVG(CASE WHEN completion_tokens IS NOT NULL AND latency_ms > 0
			THEN completion_tokens * 1000.0 / latency_ms END) AS avg_tokens_per_sec,
		COALESCE(SUM(prompt_tokens), 0) AS total_prompt_tokens,
		COALESCE(SUM(completion_tokens), 0) AS total_completion_tokens,
		AVG(rating_score) AS avg_rating
	FROM traces`

	var stats PerformanceStats
	if err := sqlscan.Get(ctx, db, &stats, query); err != nil {
		return nil, err
	}

	var rows []struct {
		Provider string `db:"provider"`
		ProviderStats
	}
	byProvider := `
	SELECT provider, COUNT(*) AS calls, COALESCE(AVG(latency_ms), 0.0) AS avg_latency_ms, AVG(rating_score) AS avg_rating
	FROM traces
	GROUP BY provider
	ORDER BY provider`
	if err := sqlscan.Select(ctx, db, &rows, byProvider); err != nil {
		return nil, err
	}

	stats.ByProvider = make(map[string]ProviderStats, len(rows))
	for _, r := range rows {
		stats.ByProvider[r.Provider] = r.ProviderStats
	}
	return &stats, nil
}
