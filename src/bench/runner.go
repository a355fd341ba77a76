package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/fs"
	"github.com/elee1766/chatledger/src/httpapi"
	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/storage"
)

// API is the part of the server API a run drives
type API interface {
	StartSession(ctx context.Context, req httpapi.StartSessionRequest) (*ledger.SessionStart, error)
	Chat(ctx context.Context, message string) (*chat.Reply, error)
	CreateBenchRun(ctx context.Context, req httpapi.CreateBenchRunRequest) (*storage.BenchRun, error)
	AddBenchTurn(ctx context.Context, runID string, turn httpapi.BenchTurnRequest) error
	AddBenchProbe(ctx context.Context, runID string, probe httpapi.BenchProbeRequest) error
	SetBenchScores(ctx context.Context, runID string, scores map[string]float64) error
	FinalizeBenchRun(ctx context.Context, runID string, summary storage.JSONObject) (*storage.BenchRun, error)
}

// TurnResult is a replayed user turn
type TurnResult struct {
	Idx       int     `json:"idx"`
	Content   string  `json:"content"`
	Response  string  `json:"response"`
	TraceID   string  `json:"trace_id,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
}

// ProbeResult is an asked and scored probe
type ProbeResult struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Question string  `json:"question"`
	Response string  `json:"response"`
	Score    float64 `json:"score"`
	Metrics  Metrics `json:"metrics"`
}

// Result is everything a run produced. It is also the results file format.
type Result struct {
	RunID      string             `json:"run_id"`
	ScenarioID string             `json:"scenario_id"`
	SessionID  string             `json:"session_id"`
	Provider   string             `json:"provider"`
	Model      string             `json:"model"`
	StartedAt  time.Time          `json:"started_at"`
	EndedAt    time.Time          `json:"ended_at"`
	Turns      []TurnResult       `json:"turns"`
	Probes     []ProbeResult      `json:"probes"`
	Scores     map[string]float64 `json:"scores"`
}

// Runner replays scenarios through the server
type Runner struct {
	api       API
	scenarios *Store
	results   *fs.ContextualFs
	logger    *slog.Logger
	now       func() time.Time
}

// RunnerConfig holds configuration for creating a new Runner
type RunnerConfig struct {
	API       API
	Scenarios *Store
	// Results receives one JSON file per run; nil skips writing
	Results *fs.ContextualFs
	Logger  *slog.Logger
	Now     func() time.Time
}

// NewRunner creates a new runner.
func NewRunner(config RunnerConfig) *Runner {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Runner{
		api:       config.API,
		scenarios: config.Scenarios,
		results:   config.Results,
		logger:    config.Logger.With("component", "bench"),
		now:       config.Now,
	}
}

// RunOptions tune a single run
type RunOptions struct {
	Notes string
	// OnProgress is called after each turn and probe
	OnProgress func(done, total int)
}

// Run starts a fresh session, replays the user turns of the scenario, asks
// every probe and records the outcome as a bench run. It returns the result
// and the results file path, which is empty when no results fs is set.
func (r *Runner) Run(ctx context.Context, name string, opts RunOptions) (*Result, string, error) {
	scenario, eval, err := r.scenarios.Load(name)
	if err != nil {
		return nil, "", err
	}
	if opts.Notes == "" {
		opts.Notes = "baseline"
	}
	logger := r.logger.With("scenario", scenario.ScenarioID)

	session, err := r.api.StartSession(ctx, httpapi.StartSessionRequest{Note: "bench:" + scenario.ScenarioID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start session: %w", err)
	}

	snapshot := session.ConfigSnapshot
	run, err := r.api.CreateBenchRun(ctx, httpapi.CreateBenchRunRequest{
		ScenarioID:      scenario.ScenarioID,
		Title:           scenario.Title,
		Provider:        snapshot.Provider,
		Model:           snapshot.Model,
		ContextMessages: snapshot.ContextMessages,
		Notes:           opts.Notes,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create bench run: %w", err)
	}
	logger = logger.With("run_id", run.ID)
	logger.Info("bench run started", "session_id", session.SessionID, "provider", snapshot.Provider, "model", snapshot.Model)

	result := &Result{
		RunID:      run.ID,
		ScenarioID: scenario.ScenarioID,
		SessionID:  session.SessionID,
		Provider:   snapshot.Provider,
		Model:      snapshot.Model,
		StartedAt:  r.now().UTC(),
		Turns:      []TurnResult{},
		Probes:     []ProbeResult{},
	}

	total := countUserTurns(scenario) + len(eval.Probes)
	done := 0
	progress := func() {
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, total)
		}
	}

	for idx, turn := range scenario.Conversation {
		if turn.Role != storage.RoleUser {
			continue
		}
		reply, latency, err := r.ask(ctx, turn.Content)
		if err != nil {
			return nil, "", fmt.Errorf("turn %d: %w", idx, err)
		}
		tr := TurnResult{Idx: idx, Content: turn.Content, Response: reply.Response, TraceID: reply.TraceID, LatencyMs: latency}
		err = r.api.AddBenchTurn(ctx, run.ID, httpapi.BenchTurnRequest{
			Idx:       idx,
			Role:      storage.RoleUser,
			Content:   turn.Content,
			Response:  reply.Response,
			LatencyMs: latency,
			TraceID:   optional(reply.TraceID),
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to record turn %d: %w", idx, err)
		}
		result.Turns = append(result.Turns, tr)
		progress()
	}

	for idx, probe := range eval.Probes {
		reply, _, err := r.ask(ctx, probe.Question)
		if err != nil {
			return nil, "", fmt.Errorf("probe %s: %w", probe.ID, err)
		}
		score, metrics := Score(reply.Response, probe)
		err = r.api.AddBenchProbe(ctx, run.ID, httpapi.BenchProbeRequest{
			Idx:       idx,
			ProbeID:   probe.ID,
			ProbeType: probe.Type,
			Question:  probe.Question,
			Expected:  toObject(probe),
			Response:  reply.Response,
			Score:     score,
			Metrics:   toObject(metrics),
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to record probe %s: %w", probe.ID, err)
		}
		result.Probes = append(result.Probes, ProbeResult{
			ID:       probe.ID,
			Type:     probe.Type,
			Question: probe.Question,
			Response: reply.Response,
			Score:    score,
			Metrics:  metrics,
		})
		logger.Debug("probe scored", "probe_id", probe.ID, "score", score)
		progress()
	}

	result.Scores = Aggregate(result.Probes)
	if err := r.api.SetBenchScores(ctx, run.ID, result.Scores); err != nil {
		return nil, "", fmt.Errorf("failed to store scores: %w", err)
	}
	summary := storage.JSONObject{
		"total_probes": len(result.Probes),
		"scores":       result.Scores,
	}
	if _, err := r.api.FinalizeBenchRun(ctx, run.ID, summary); err != nil {
		return nil, "", fmt.Errorf("failed to finalize run: %w", err)
	}
	result.EndedAt = r.now().UTC()

	logger.Info("bench run finished", "score_overall", result.Scores["score_overall"], "probes", len(result.Probes))

	if r.results == nil {
		return result, "", nil
	}
	file := fmt.Sprintf("%s_%s.json", name, result.EndedAt.Format("20060102_150405"))
	if err := r.results.WriteJSON(file, result); err != nil {
		return result, "", fmt.Errorf("failed to write results: %w", err)
	}
	return result, filepath.Join(r.results.BaseDir(), file), nil
}

func (r *Runner) ask(ctx context.Context, message string) (*chat.Reply, float64, error) {
	start := time.Now()
	reply, err := r.api.Chat(ctx, message)
	if err != nil {
		return nil, 0, err
	}
	return reply, float64(time.Since(start).Microseconds()) / 1000, nil
}

func countUserTurns(s *Scenario) int {
	n := 0
	for _, t := range s.Conversation {
		if t.Role == storage.RoleUser {
			n++
		}
	}
	return n
}

// toObject converts a struct into a free-form JSON object
func toObject(v interface{}) storage.JSONObject {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var obj storage.JSONObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
