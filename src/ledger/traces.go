package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/elee1766/chatledger/src/storage"
)

// TraceInput describes one inference call to record
type TraceInput struct {
	Provider         string
	Model            string
	RawMessagesIn    storage.ChatMessages
	ResponseOut      string
	LatencyMs        float64
	PromptTokens     *int64
	CompletionTokens *int64
	SystemPrompt     *string
	ContextMessages  storage.ChatMessages
	TriggerMessage   *storage.ChatMessage
	SessionID        *string
}

func (in *TraceInput) validate() error {
	if strings.TrimSpace(in.Provider) == "" {
		return ErrProviderMissing
	}
	if strings.TrimSpace(in.Model) == "" {
		return ErrModelMissing
	}
	if in.LatencyMs < 0 || math.IsNaN(in.LatencyMs) || math.IsInf(in.LatencyMs, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidLatency, in.LatencyMs)
	}
	if (in.PromptTokens != nil && *in.PromptTokens < 0) || (in.CompletionTokens != nil && *in.CompletionTokens < 0) {
		return ErrInvalidTokens
	}
	for _, m := range in.RawMessagesIn {
		if m.Role == "" {
			return fmt.Errorf("%w: raw message without role", ErrInvalidRole)
		}
	}
	return nil
}

// RecordTrace stores a trace and folds it into its hourly rollup in one transaction
func (l *Ledger) RecordTrace(ctx context.Context, input TraceInput) (string, error) {
	db, err := l.store()
	if err != nil {
		return "", err
	}
	if err := input.validate(); err != nil {
		return "", err
	}

	trace := &storage.Trace{
		Timestamp:        l.clock.Now(),
		Provider:         input.Provider,
		Model:            input.Model,
		SystemPrompt:     input.SystemPrompt,
		ContextMessages:  input.ContextMessages,
		TriggerMessage:   input.TriggerMessage,
		RawMessagesIn:    input.RawMessagesIn,
		ResponseOut:      input.ResponseOut,
		LatencyMs:        input.LatencyMs,
		PromptTokens:     input.PromptTokens,
		CompletionTokens: input.CompletionTokens,
		SessionID:        input.SessionID,
	}

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := storage.CreateTrace(ctx, tx, trace); err != nil {
			return fmt.Errorf("failed to insert trace: %w", err)
		}
		err := storage.UpsertRollup(ctx, tx, trace.Timestamp, trace.Provider, trace.Model,
			trace.LatencyMs, trace.PromptTokens, trace.CompletionTokens)
		if err != nil {
			return fmt.Errorf("failed to update rollup: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", &TransactionError{Op: "record_trace", Err: err}
	}

	l.logger.Debug("trace recorded",
		"method", "RecordTrace",
		"trace_id", trace.ID,
		"provider", trace.Provider,
		"model", trace.Model,
		"latency_ms", trace.LatencyMs)
	return trace.ID, nil
}

// GetTrace returns one trace, nil when it does not exist
func (l *Ledger) GetTrace(ctx context.Context, traceID string) (*storage.Trace, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	trace, err := storage.GetTraceByID(ctx, db.DB(), traceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}
	return trace, nil
}

// ListTraces returns traces newest first, scoped to sessionID when it is not empty
func (l *Ledger) ListTraces(ctx context.Context, limit, offset int, sessionID string) ([]storage.Trace, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if err := validateLimit(limit, offset); err != nil {
		return nil, err
	}
	traces, err := storage.ListTraces(ctx, db.DB(), limit, offset, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	if traces == nil {
		traces = []storage.Trace{}
	}
	return traces, nil
}

// RateTrace overwrites the rating of a trace. A nil rating means the trace does not exist.
func (l *Ledger) RateTrace(ctx context.Context, traceID string, score int, note *string) (*storage.TraceRating, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	rating, err := storage.RateTrace(ctx, db.DB(), traceID, score, note)
	if err != nil {
		return nil, fmt.Errorf("failed to rate trace: %w", err)
	}
	if rating == nil {
		l.logger.Debug("rating for unknown trace", "method", "RateTrace", "trace_id", traceID)
	}
	return rating, nil
}

// PerformanceStats summarizes every trace. Averages are rounded to two decimals.
func (l *Ledger) PerformanceStats(ctx context.Context) (*storage.PerformanceStats, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	stats, err := storage.GetPerformanceStats(ctx, db.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to compute performance stats: %w", err)
	}

	stats.AvgLatencyMs = round2(stats.AvgLatencyMs)
	stats.AvgTokensPerSec = round2Ptr(stats.AvgTokensPerSec)
	stats.AvgRating = round2Ptr(stats.AvgRating)
	for provider, ps := range stats.ByProvider {
		ps.AvgLatencyMs = round2(ps.AvgLatencyMs)
		ps.AvgRating = round2Ptr(ps.AvgRating)
		stats.ByProvider[provider] = ps
	}
	return stats, nil
}

// ListRollups returns hourly buckets newest first, from the hour containing since when set
func (l *Ledger) ListRollups(ctx context.Context, since *time.Time) ([]storage.Rollup, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	rollups, err := storage.ListRollups(ctx, db.DB(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to list rollups: %w", err)
	}
	if rollups == nil {
		rollups = []storage.Rollup{}
	}
	return rollups, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
