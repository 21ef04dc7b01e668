package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/ir"
	"github.com/roach88/liqgen/internal/processfile"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output directory for process documents
}

// CompiledProcess is one process compiled from CUE.
type CompiledProcess struct {
	Label   string      `json:"label"`
	Path    string      `json:"path,omitempty"`
	Process *ir.Process `json:"process"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <cue-dir>",
		Short: "Compile CUE-authored processes to process documents",
		Long: `Compile processes authored in CUE to JSON process documents.

Every struct under the top-level process field is one process:

    process: FlushA: {
        name: "Flush A"
        steps: [{type: "valve", device: "SV1", action: "open"}]
    }

Each process is validated. With --output, one <Label>.json document per
process is written to the directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory for process documents")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	// Collect-all mode so every broken process is reported at once
	loadResult, loadErrors := compiler.LoadProcesses(dir, compiler.LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, compiler.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	var invalid []compiler.ValidationError
	compiled := make([]CompiledProcess, len(loadResult.Processes))
	for i, p := range loadResult.Processes {
		label := loadResult.Labels[i]
		formatter.VerboseLog("Compiled process: %s", label)
		compiled[i] = CompiledProcess{Label: label, Process: p}

		for _, e := range compiler.Validate(p) {
			e.Field = "process." + label + "." + e.Field
			invalid = append(invalid, e)
		}
	}
	if len(invalid) > 0 {
		return reportValidation(formatter, invalid)
	}

	if opts.Output != "" {
		for _, c := range compiled {
			if !isFileLabel(c.Label) {
				return outputCompileError(formatter, compiler.ErrCodeWriteFailed,
					fmt.Sprintf("process label %q cannot be used as a file name in %s", c.Label, opts.Output))
			}
		}
		for i := range compiled {
			path := filepath.Join(opts.Output, compiled[i].Label+".json")
			if err := processfile.Save(path, compiled[i].Process, opts.clock()); err != nil {
				return outputCompileError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", path, err))
			}
			compiled[i].Path = path
		}
	}

	return outputCompileSuccess(formatter, compiled)
}

// isFileLabel reports whether label names a file directly inside the
// output directory.
func isFileLabel(label string) bool {
	return label != "" && label != "." && label != ".." && !strings.ContainsAny(label, "/\\\x00")
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, compiled []CompiledProcess) error {
	if formatter.Format == "json" {
		return formatter.Success(compiled)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d process(es)\n\n", len(compiled))
	for _, c := range compiled {
		fmt.Fprintf(formatter.Writer, "  %s: %q, %d step(s)", c.Label, c.Process.Name, len(c.Process.Steps))
		if c.Path != "" {
			fmt.Fprintf(formatter.Writer, " → %s", c.Path)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// outputCompileError reports a single error that stopped compilation.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors reports every process that failed to compile, with
// CUE source positions.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	findings := loadFindings(errs)
	summary := fmt.Sprintf("compilation failed with %d error(s)", len(errs))

	if formatter.Format == "json" {
		if err := formatter.Failure(nil, CLIError{Code: findings[0].Code, Message: summary, Findings: findings}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, summary)
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, f := range findings {
		if f.Position != "" {
			fmt.Fprintln(formatter.Writer, f.Position)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", f.Code, f.Message)
	}
	return NewExitError(ExitCommandError, summary)
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.ErrCodeCompile, compileErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}
