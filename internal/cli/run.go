package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/homotopy/internal/harness"
	"github.com/roach88/homotopy/internal/metrics"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Update  bool   // regenerate golden files
	Filter  string // scenario filter (glob pattern)
	Metrics bool   // print interner and action metrics per scenario
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string               `json:"name"`
	Pass   bool                 `json:"pass"`
	Trace  []harness.TraceEvent `json:"trace,omitempty"`
	Errors []string             `json:"errors,omitempty"`
}

// RunResult holds the overall result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-file-or-dir>",
		Short: "Run proof scenarios",
		Long: `Run YAML proof scenarios: each applies its steps to a fresh proof over
its signature, checks every step's expected outcome and evaluates the
assertions on the final state. When a golden file exists next to the
scenario (golden/<name>.golden) the trace must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  homotopy run ./scenarios
  homotopy run ./scenarios --filter "side_*"
  homotopy run ./scenarios --update
  homotopy run side_by_side.yaml --format json --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print interner and action metrics to stderr")

	return cmd
}

func runScenarios(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := FindFiles(path, []string{".yaml", ".yml"}, opts.Filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot find scenarios", err)
	}

	ctx, cancel := opts.runContext(cmd)
	defer cancel()

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(ctx, opts, file, formatter)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, result)
	}
	return outputRunText(cmd, result)
}

// runScenario executes a single scenario and returns the result.
func runScenario(ctx context.Context, opts *RunOptions, file string, formatter *OutputFormatter) ScenarioResult {
	w := formatter.Writer
	text := opts.Format != "json"

	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(filepath.Base(file), fmt.Sprintf("failed to load scenario: %v", err))
	}
	formatter.VerboseLog("Running %s (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(ctx, scenario, harness.WithLogger(slog.Default()))
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}

	if opts.Metrics {
		if err := writeMetrics(formatter, result); err != nil {
			return fail(scenario.Name, fmt.Sprintf("metrics: %v", err))
		}
	}

	snapshot := harness.TraceSnapshot{Scenario: scenario.Name, Trace: result.Trace}
	trace, err := snapshot.Marshal()
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to marshal trace: %v", err))
	}
	goldenPath := harness.GoldenPath(file)

	switch {
	case opts.Update:
		if err := writeGolden(goldenPath, trace); err != nil {
			return fail(scenario.Name, err.Error())
		}
		formatter.VerboseLog("Updated %s", goldenPath)
	default:
		want, err := os.ReadFile(goldenPath)
		if err == nil && !bytes.Equal(want, trace) {
			result.AddError("trace does not match golden file (run with --update to regenerate)")
		} else if err != nil && !os.IsNotExist(err) {
			result.AddError(fmt.Sprintf("failed to read golden file: %v", err))
		}
	}

	if !result.Pass {
		sr := fail(scenario.Name, result.Errors...)
		sr.Trace = result.Trace
		return sr
	}
	if text {
		fmt.Fprintf(w, "✓ %s\n", scenario.Name)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true, Trace: result.Trace}
}

// writeGolden writes the current trace as the golden file.
func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func writeMetrics(formatter *OutputFormatter, result *harness.Result) error {
	reg, err := metrics.NewRegistry(result.Proof.Signature().Interner())
	if err != nil {
		return err
	}
	for _, ev := range result.Trace {
		reg.Actions.Observe(ev.Action, ev.Outcome)
	}
	return metrics.WriteText(formatter.GetErrWriter(), reg)
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, result RunResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputRunText outputs the run summary as text.
func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
