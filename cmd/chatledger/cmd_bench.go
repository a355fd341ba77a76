package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/bench"
	"github.com/elee1766/chatledger/src/fs"
	"github.com/elee1766/chatledger/src/theme"
)

// BenchCmd runs and inspects recall benchmarks
type BenchCmd struct {
	Run       BenchRunCmd       `cmd:"" help:"Replay a scenario against the server and score it"`
	Scenarios BenchScenariosCmd `cmd:"" help:"List available scenarios"`
	List      BenchListCmd      `cmd:"" help:"List recorded runs"`
	Show      BenchShowCmd      `cmd:"" help:"Show one run with its probes"`
	Compare   BenchCompareCmd   `cmd:"" help:"Compare the probes of two runs"`
	Schema    BenchSchemaCmd    `cmd:"" help:"Print the JSON Schema of scenario or eval files"`
}

// BenchRunCmd runs a scenario
type BenchRunCmd struct {
	Scenario     string `arg:"" optional:"" help:"Scenario name (file stem under conversations/)"`
	ScenariosDir string `help:"Scenario directory (defaults to config)"`
	ResultsDir   string `help:"Directory for result files (defaults to config)"`
	NoResults    bool   `help:"Do not write a result file"`
	Notes        string `default:"baseline" help:"Notes stored with the run"`
	Format       string `help:"Output format (table, json)" default:"table"`
}

// Run executes the bench run command
func (c *BenchRunCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, cfg, err := newClient(cli)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Logging.Level, cfg.Logging.Format)

	scenariosDir := firstNonEmpty(c.ScenariosDir, cfg.Bench.ScenariosDir)
	resultsDir := firstNonEmpty(c.ResultsDir, cfg.Bench.ResultsDir)
	name := firstNonEmpty(c.Scenario, bench.DefaultScenario)

	runnerCfg := bench.RunnerConfig{
		API:       client,
		Scenarios: bench.NewStore(fs.NewOsFs(scenariosDir)),
		Logger:    logger,
	}
	if !c.NoResults {
		runnerCfg.Results = fs.NewOsFs(resultsDir)
	}
	runner := bench.NewRunner(runnerCfg)

	result, path, err := runner.Run(context.Background(), name, bench.RunOptions{
		Notes: c.Notes,
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%s", theme.Muted().Render(fmt.Sprintf("%d/%d", done, total)))
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("bench run failed: %w", err)
	}
	if c.Format == "json" {
		return printJSON(result)
	}

	rows := make([][]string, 0, len(result.Probes))
	for _, p := range result.Probes {
		rows = append(rows, []string{p.ID, p.Type, theme.Score(p.Score), truncate(p.Response, 60)})
	}
	printTable([]string{"PROBE", "TYPE", "SCORE", "RESPONSE"}, rows)
	printScores(result.Scores)
	fmt.Println(theme.Muted().Render("run " + result.RunID))
	if path != "" {
		fmt.Println(theme.Muted().Render("saved results to " + path))
	}
	return nil
}

// BenchScenariosCmd lists scenarios
type BenchScenariosCmd struct {
	ScenariosDir string `help:"Scenario directory (defaults to config)"`
}

// Run executes the bench scenarios command
func (c *BenchScenariosCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, _, err := setup(cli)
	if err != nil {
		return err
	}
	names, err := bench.NewStore(fs.NewOsFs(firstNonEmpty(c.ScenariosDir, cfg.Bench.ScenariosDir))).List()
	if err != nil {
		return fmt.Errorf("failed to list scenarios: %w", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

// BenchListCmd lists runs
type BenchListCmd struct {
	Limit  int    `default:"20" help:"Runs to show"`
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the bench list command
func (c *BenchListCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	runs, err := client.ListBenchRuns(context.Background(), c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if c.Format == "json" {
		return printJSON(runs)
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		overall := "-"
		if scores, ok := r.Summary["scores"].(map[string]interface{}); ok {
			if v, ok := scores["score_overall"].(float64); ok {
				overall = theme.Score(v)
			}
		}
		rows = append(rows, []string{
			r.ID, r.ScenarioID, r.Provider, truncate(r.Model, 24), strconv.Itoa(r.ContextMessages),
			formatTime(r.StartedAt), formatOptionalTime(r.EndedAt), overall,
		})
	}
	printTable([]string{"ID", "SCENARIO", "PROVIDER", "MODEL", "CONTEXT", "STARTED", "ENDED", "OVERALL"}, rows)
	return nil
}

// BenchShowCmd shows a run
type BenchShowCmd struct {
	ID     string `arg:"" help:"Run ID"`
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the bench show command
func (c *BenchShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	run, err := client.GetBenchRun(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if c.Format == "json" {
		return printJSON(run)
	}

	fmt.Printf("%s %s (%s/%s, %d context messages)\n",
		theme.Title().Render(run.ScenarioID), run.ID, run.Provider, run.Model, run.ContextMessages)
	fmt.Println(theme.Muted().Render(fmt.Sprintf("%d turns, started %s, ended %s",
		len(run.Turns), formatTime(run.StartedAt), formatOptionalTime(run.EndedAt))))

	rows := make([][]string, 0, len(run.Probes))
	for _, p := range run.Probes {
		rows = append(rows, []string{p.ProbeID, p.ProbeType, truncate(p.Question, 30), theme.Score(p.Score), truncate(p.Response, 50)})
	}
	printTable([]string{"PROBE", "TYPE", "QUESTION", "SCORE", "RESPONSE"}, rows)
	printScores(run.Scores)
	return nil
}

// BenchCompareCmd compares two runs
type BenchCompareCmd struct {
	RunA   string `arg:"" help:"Baseline run ID"`
	RunB   string `arg:"" help:"Candidate run ID"`
	Diff   bool   `help:"Print response diffs for changed probes"`
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the bench compare command
func (c *BenchCompareCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	bg := context.Background()
	a, err := client.GetBenchRun(bg, c.RunA)
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", c.RunA, err)
	}
	b, err := client.GetBenchRun(bg, c.RunB)
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", c.RunB, err)
	}

	cmp := bench.Compare(a, b)
	if c.Format == "json" {
		return printJSON(cmp)
	}

	rows := make([][]string, 0, len(cmp.Probes))
	for _, p := range cmp.Probes {
		delta := "-"
		if p.ScoreA != nil && p.ScoreB != nil {
			delta = theme.Delta(p.Delta)
		}
		rows = append(rows, []string{p.ProbeID, formatOptionalFloat(p.ScoreA), formatOptionalFloat(p.ScoreB), delta})
	}
	printTable([]string{"PROBE", "A", "B", "DELTA"}, rows)

	metrics := sortedKeys(cmp.Scores)
	scoreRows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		scoreRows = append(scoreRows, []string{m, theme.Delta(cmp.Scores[m])})
	}
	printTable([]string{"METRIC", "DELTA"}, scoreRows)

	if c.Diff {
		for _, p := range cmp.Probes {
			if p.Diff == "" {
				continue
			}
			if isTerminal(os.Stdout) {
				if err := printDiff(p.Diff); err == nil {
					continue
				}
			}
			fmt.Print(p.Diff)
		}
	}
	return nil
}

// BenchSchemaCmd prints a JSON Schema
type BenchSchemaCmd struct {
	Kind string `arg:"" optional:"" enum:"scenario,eval" default:"scenario" help:"Which file format (scenario, eval)"`
}

// Run executes the bench schema command
func (c *BenchSchemaCmd) Run(ctx *kong.Context, cli *CLI) error {
	if c.Kind == "eval" {
		return printJSON(bench.EvalSchema())
	}
	return printJSON(bench.ScenarioSchema())
}

func printScores(scores map[string]float64) {
	keys := sortedKeys(scores)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, theme.Score(scores[k])})
	}
	printTable([]string{"METRIC", "SCORE"}, rows)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
