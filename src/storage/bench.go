package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const benchRunColumns = `id, scenario_id, title, provider, model, context_messages, started_at, ended_at, notes, summary`

// CreateBenchRun records the start of a benchmark run
func CreateBenchRun(ctx context.Context, db Execer, run *BenchRun) error {
	if run.ID == "" {
		run.ID = GenerateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	query := `INSERT INTO bench_runs (` + benchRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, NULL)`
	_, err := db.ExecContext(ctx, query,
		run.ID, run.ScenarioID, run.Title, run.Provider, run.Model,
		run.ContextMessages, run.StartedAt, run.Notes)
	return err
}

// AddBenchTurn stores one replayed conversation turn
func AddBenchTurn(ctx context.Context, db Execer, turn *BenchTurn) error {
	query := `INSERT INTO bench_turns (run_id, idx, role, content, response, latency_ms, trace_id) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		turn.RunID, turn.Idx, turn.Role, turn.Content, turn.Response, turn.LatencyMs, turn.TraceID)
	return err
}

// AddBenchProbe stores one scored probe
func AddBenchProbe(ctx context.Context, db Execer, probe *BenchProbe) error {
	query := `INSERT INTO bench_probes (run_id, idx, probe_id, probe_type, question, expected, response, score, metrics) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		probe.RunID, probe.Idx, probe.ProbeID, probe.ProbeType, probe.Question,
		probe.Expected, probe.Response, probe.Score, probe.Metrics)
	return err
}

// SetBenchScore inserts or replaces one metric of a run
func SetBenchScore(ctx context.Context, db Execer, runID, metric string, value float64) error {
	query := `INSERT INTO bench_scores (run_id, metric, value) VALUES (?, ?, ?)
	ON CONFLICT (run_id, metric) DO UPDATE SET value = excluded.value`
	_, err := db.ExecContext(ctx, query, runID, metric, value)
	return err
}

// FinalizeBenchRun sets ended_at and the summary. It reports false for an unknown run.
func FinalizeBenchRun(ctx context.Context, db Execer, runID string, endedAt time.Time, summary JSONObject) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE bench_runs SET ended_at = ?, summary = ? WHERE id = ?`, endedAt, summary, runID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetBenchRunByID retrieves a run without its turns and probes
func GetBenchRunByID(ctx context.Context, db sqlscan.Querier, runID string) (*BenchRun, error) {
	var run BenchRun
	err := sqlscan.Get(ctx, db, &run, `SELECT `+benchRunColumns+` FROM bench_runs WHERE id = ?`, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	run.toUTC()
	return &run, nil
}

// ListBenchRuns returns the most recent runs first
func ListBenchRuns(ctx context.Context, db sqlscan.Querier, limit int) ([]BenchRun, error) {
	var runs []BenchRun
	err := sqlscan.Select(ctx, db, &runs, `SELECT `+benchRunColumns+` FROM bench_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	allToUTC(runs)
	return runs, nil
}

// GetBenchRun loads a run with its turns, probes and scores
func GetBenchRun(ctx context.Context, db sqlscan.Querier, runID string) (*BenchRunDetail, error) {
	run, err := GetBenchRunByID(ctx, db, runID)
	if err != nil || run == nil {
		return nil, err
	}

	detail := &BenchRunDetail{
		BenchRun: *run,
		Turns:    []BenchTurn{},
		Probes:   []BenchProbe{},
		Scores:   map[string]float64{},
	}

	err = sqlscan.Select(ctx, db, &detail.Turns,
		`SELECT run_id, idx, role, content, response, latency_ms, trace_id FROM bench_turns WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}

	err = sqlscan.Select(ctx, db, &detail.Probes,
		`SELECT run_id, idx, probe_id, probe_type, question, expected, response, score, metrics FROM bench_probes WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}

	var scores []BenchScore
	if err := sqlscan.Select(ctx, db, &scores, `SELECT run_id, metric, value FROM bench_scores WHERE run_id = ? ORDER BY metric`, runID); err != nil {
		return nil, err
	}
	for _, s := range scores {
		detail.Scores[s.Metric] = s.Value
	}
	if detail.Turns == nil {
		detail.Turns = []BenchTurn{}
	}
	if detail.Probes == nil {
		detail.Probes = []BenchProbe{}
	}

	return detail, nil
}

// GetBenchSummary joins every stored score with its run metadata
func GetBenchSummary(ctx context.Context, db sqlscan.Querier) ([]BenchSummaryRow, error) {
	query := `
	SELECT r.id AS run_id, r.scenario_id, r.provider, r.model, r.started_at, s.metric, s.value
	FROM bench_scores s
	JOIN bench_runs r ON r.id = s.run_id
	ORDER BY r.started_at DESC, s.metric`
	var rows []BenchSummaryRow
	if err := sqlscan.Select(ctx, db, &rows, query); err != nil {
		return nil, err
	}
	allToUTC(rows)
	return rows, nil
}
