package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// RollupPeriod truncates t to the start of its UTC hour
func RollupPeriod(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// UpsertRollup folds one call into its hourly bucket. The statement is a
// single read-modify-write so concurrent writers to a bucket cannot lose updates.
func UpsertRollup(ctx context.Context, db Execer, at time.Time, provider, model string, latencyMs float64, promptTokens, completionTokens *int64) error {
	query := `
	INSERT INTO trace_rollups (period_start, provider, model, call_count, avg_latency_ms, total_prompt_tokens, total_completion_tokens)
	VALUES (?, ?, ?, 1, ?, ?, ?)
	ON CONFLICT (period_start, provider, model) DO UPDATE SET
		avg_latency_ms = (trace_rollups.avg_latency_ms * trace_rollups.call_count + excluded.avg_latency_ms) / (trace_rollups.call_count + 1),
		call_count = trace_rollups.call_count + 1,
		total_prompt_tokens = trace_rollups.total_prompt_tokens + excluded.total_prompt_tokens,
		total_completion_tokens = trace_rollups.total_completion_tokens + excluded.total_completion_tokens`

	_, err := db.ExecContext(ctx, query,
		RollupPeriod(at), provider, model, latencyMs,
		valueOrZero(promptTokens), valueOrZero(completionTokens))
	return err
}

// ListRollups returns buckets newest first, from since onwards when set
func ListRollups(ctx context.Context, db sqlscan.Querier, since *time.Time) ([]Rollup, error) {
	query := `SELECT period_start, provider, model, call_count, avg_latency_ms, total_prompt_tokens, total_completion_tokens FROM trace_rollups`
	args := []interface{}{}
	if since != nil {
		query += ` WHERE period_start >= ?`
		args = append(args, RollupPeriod(*since))
	}
	query += ` ORDER BY period_start DESC, provider, model`

	var rollups []Rollup
	if err := sqlscan.Select(ctx, db, &rollups, query, args...); err != nil {
		return nil, err
	}
	allToUTC(rollups)
	return rollups, nil
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
