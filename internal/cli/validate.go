package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/liqgen/internal/compiler"
)

// ValidationResult holds the validation results of one process document.
type ValidationResult struct {
	Path     string                     `json:"path"`
	Process  string                     `json:"process,omitempty"`
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.Warning         `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <process-file>...",
		Short: "Check process documents without generating code",
		Long: `Check one or more process documents.

Errors (E2xx) block generation; warnings (W3xx) point at steps that will
render, but probably not as intended: unknown devices, async motion that
is never waited for, composite text that renders as a placeholder.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	reg, err := opts.deviceTable()
	if err != nil {
		return report(formatter, err)
	}

	results := make([]ValidationResult, 0, len(paths))
	invalid := 0
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		result := ValidationResult{Path: path}

		doc, err := readProcess(path)
		if err != nil {
			var failure *cliFailure
			if errors.As(err, &failure) && failure.exit == ExitCommandError {
				return report(formatter, err)
			}
			result.Errors = []compiler.ValidationError{{Field: "document", Message: err.Error(), Code: ErrCodeDocument}}
		} else {
			result.Process = doc.Process.Name
			result.Errors = compiler.Validate(doc.Process)
			result.Warnings = compiler.Lint(doc.Process, reg)
		}

		result.Valid = len(result.Errors) == 0
		if !result.Valid {
			invalid++
		}
		results = append(results, result)
	}

	if formatter.Format == "json" {
		return outputValidationJSON(formatter, results, invalid)
	}
	return outputValidationText(formatter, results, invalid)
}

// outputValidationJSON writes all results; any invalid document makes the
// response an error.
func outputValidationJSON(formatter *OutputFormatter, results []ValidationResult, invalid int) error {
	if invalid == 0 {
		return formatter.Success(results)
	}

	err := formatter.Failure(results, CLIError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("%d of %d process(es) invalid", invalid, len(results)),
	})
	if err != nil {
		return err
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d process(es)", invalid))
}

func outputValidationText(formatter *OutputFormatter, results []ValidationResult, invalid int) error {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(formatter.Writer, "✓ %s", r.Path)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s", r.Path)
		}
		if r.Process != "" {
			fmt.Fprintf(formatter.Writer, " (%s)", r.Process)
		}
		fmt.Fprintln(formatter.Writer)

		for _, e := range r.Errors {
			fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", w.Code, w.Field, w.Message)
		}
	}

	if invalid > 0 {
		fmt.Fprintf(formatter.Writer, "\n%d of %d process(es) invalid\n", invalid, len(results))
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d process(es)", invalid))
	}
	return nil
}
