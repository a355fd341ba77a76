package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/elee1766/chatledger/src/storage"
)

// CreateBenchRun records the start of a benchmark run and returns it with its id
func (l *Ledger) CreateBenchRun(ctx context.Context, run storage.BenchRun) (*storage.BenchRun, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(run.ScenarioID) == "" {
		return nil, fmt.Errorf("%w: scenario_id is required", ErrInvalidArgument)
	}
	run.ID = ""
	run.StartedAt = l.clock.Now()
	run.EndedAt = nil
	run.Summary = nil
	if err := storage.CreateBenchRun(ctx, db.DB(), &run); err != nil {
		return nil, fmt.Errorf("failed to create bench run: %w", err)
	}
	return &run, nil
}

// AddBenchTurn stores one replayed turn of a run
func (l *Ledger) AddBenchTurn(ctx context.Context, turn storage.BenchTurn) error {
	return l.withBenchRun(ctx, turn.RunID, "add_bench_turn", func(tx *sql.Tx) error {
		return storage.AddBenchTurn(ctx, tx, &turn)
	})
}

// AddBenchProbe stores one scored probe of a run
func (l *Ledger) AddBenchProbe(ctx context.Context, probe storage.BenchProbe) error {
	return l.withBenchRun(ctx, probe.RunID, "add_bench_probe", func(tx *sql.Tx) error {
		return storage.AddBenchProbe(ctx, tx, &probe)
	})
}

// SetBenchScores upserts every metric in scores for a run
func (l *Ledger) SetBenchScores(ctx context.Context, runID string, scores map[string]float64) error {
	return l.withBenchRun(ctx, runID, "set_bench_scores", func(tx *sql.Tx) error {
		for metric, value := range scores {
			if err := storage.SetBenchScore(ctx, tx, runID, metric, value); err != nil {
				return fmt.Errorf("failed to set score %s: %w", metric, err)
			}
		}
		return nil
	})
}

// FinalizeBenchRun stamps ended_at and stores the run summary
func (l *Ledger) FinalizeBenchRun(ctx context.Context, runID string, summary storage.JSONObject) (*storage.BenchRun, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	ok, err := storage.FinalizeBenchRun(ctx, db.DB(), runID, l.clock.Now(), summary)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize bench run: %w", err)
	}
	if !ok {
		return nil, ErrBenchRunNotFound
	}
	return storage.GetBenchRunByID(ctx, db.DB(), runID)
}

// ListBenchRuns returns the newest runs first
func (l *Ledger) ListBenchRuns(ctx context.Context, limit int) ([]storage.BenchRun, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if err := validateLimit(limit, 0); err != nil {
		return nil, err
	}
	runs, err := storage.ListBenchRuns(ctx, db.DB(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bench runs: %w", err)
	}
	if runs == nil {
		runs = []storage.BenchRun{}
	}
	return runs, nil
}

// GetBenchRun loads a run with its turns, probes and scores; nil when unknown
func (l *Ledger) GetBenchRun(ctx context.Context, runID string) (*storage.BenchRunDetail, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	var detail *storage.BenchRunDetail
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		detail, err = storage.GetBenchRun(ctx, tx, runID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bench run: %w", err)
	}
	return detail, nil
}

// BenchSummary joins every stored score with its run
func (l *Ledger) BenchSummary(ctx context.Context) ([]storage.BenchSummaryRow, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	rows, err := storage.GetBenchSummary(ctx, db.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bench runs: %w", err)
	}
	if rows == nil {
		rows = []storage.BenchSummaryRow{}
	}
	return rows, nil
}

// withBenchRun runs fn in a transaction after checking the run exists
func (l *Ledger) withBenchRun(ctx context.Context, runID, op string, fn func(tx *sql.Tx) error) error {
	db, err := l.store()
	if err != nil {
		return err
	}
	var missing bool
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		run, err := storage.GetBenchRunByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			missing = true
			return ErrBenchRunNotFound
		}
		return fn(tx)
	})
	if missing {
		return ErrBenchRunNotFound
	}
	if err != nil {
		return &TransactionError{Op: op, Err: err}
	}
	return nil
}
