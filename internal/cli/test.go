package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-file-or-dir>...",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios against the code generator.

Each scenario names a process document, the diagnostics it should produce
and assertions over the generated code. When golden/<name>.<lang>.golden
exists next to a scenario file the generated code must match it exactly.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  liqgen test ./scenarios
  liqgen test ./scenarios --filter "flush*"
  liqgen test ./scenarios --update`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern on the file name")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	files, err := harness.FindScenarios(paths...)
	if err != nil {
		return report(formatter, &cliFailure{code: compiler.ErrCodeNotFound, exit: ExitCommandError, err: err})
	}
	files, err = filterScenarios(files, opts.Filter)
	if err != nil {
		return report(formatter, &cliFailure{code: ErrCodeUsage, exit: ExitCommandError, err: err})
	}

	if len(files) == 0 {
		if formatter.Format == "json" {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	reg, err := opts.deviceTable()
	if err != nil {
		return report(formatter, err)
	}
	cfg, err := opts.config()
	if err != nil {
		return report(formatter, err)
	}
	runOpts := []harness.Option{
		harness.WithRegistry(reg),
		harness.WithFaultPolicy(cfg.Fault),
		harness.WithLogger(opts.log()),
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(commandContext(cmd), file, opts, runOpts)
		if formatter.Format != "json" {
			outputScenarioText(formatter, sr, opts.Update)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// filterScenarios keeps the files whose base name, without extension,
// matches the glob pattern.
func filterScenarios(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	var out []string
	for _, f := range files {
		base := filepath.Base(f)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if ok, _ := filepath.Match(pattern, name); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// runScenario loads, runs and golden-checks one scenario file.
func runScenario(ctx context.Context, file string, opts *TestOptions, runOpts []harness.Option) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Errors = result.Failures

	if opts.Update {
		if err := harness.WriteGolden(file, result); err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		}
	} else {
		mismatched, err := harness.CompareGolden(file, result)
		if err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		}
		for _, format := range mismatched {
			sr.Errors = append(sr.Errors, fmt.Sprintf("%s code does not match %s (run with --update to regenerate)",
				format, harness.GoldenPath(file, format)))
		}
	}

	sr.Pass = len(sr.Errors) == 0
	if len(sr.Errors) == 0 {
		sr.Errors = nil
	}
	return sr
}

func outputScenarioText(formatter *OutputFormatter, sr ScenarioResult, updated bool) {
	if !sr.Pass {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(formatter.Writer, "  %s\n", e)
		}
		return
	}
	if updated {
		fmt.Fprintf(formatter.Writer, "✓ %s (golden updated)\n", sr.Name)
		return
	}
	fmt.Fprintf(formatter.Writer, "✓ %s\n", sr.Name)
}

// outputTestText prints the summary line.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestJSON writes every scenario result; any failure makes the
// response an error.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return formatter.Success(result)
	}

	message := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := formatter.Failure(result, CLIError{Code: ErrCodeTestFailed, Message: message}); err != nil {
		return err
	}
	// Test failures = exit code 1
	return NewExitError(ExitFailure, message)
}
