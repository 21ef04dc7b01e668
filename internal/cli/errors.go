package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/processfile"
)

// CLI error codes. Load codes (E001-E008) come from the compiler package and
// validation codes (E201-E213) from compiler.Validate.
const (
	ErrCodeDocument   = "E101" // process document failed to parse or match the schema
	ErrCodeLibrary    = "E102" // library database error
	ErrCodeUsage      = "E103" // bad flag value or argument
	ErrCodeTestFailed = "E104" // one or more conformance scenarios failed
	ErrCodeValidation = "E200" // process failed validation; findings carry E2xx codes
)

// readProcess loads a process document, mapping failures to exit codes:
// unreadable paths are command errors, bad documents are failures.
func readProcess(path string) (*processfile.Document, error) {
	if _, err := processfile.KindFromPath(path); err != nil {
		return nil, &cliFailure{code: ErrCodeUsage, exit: ExitCommandError, err: err}
	}
	doc, err := processfile.Load(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, &cliFailure{code: compiler.ErrCodeNotFound, exit: ExitCommandError, err: err}
		}
		return nil, &cliFailure{code: ErrCodeDocument, exit: ExitFailure, err: err}
	}
	return doc, nil
}

// cliFailure is an error that already knows its code and exit status.
type cliFailure struct {
	code string
	exit int
	err  error
}

func (e *cliFailure) Error() string { return e.err.Error() }
func (e *cliFailure) Unwrap() error { return e.err }

// report writes err through the formatter and converts it to an ExitError.
// Errors without a code are command errors.
func report(f *OutputFormatter, err error) error {
	var failure *cliFailure
	if errors.As(err, &failure) {
		_ = f.Error(failure.code, failure.err.Error())
		return WrapExitError(failure.exit, failure.code, failure.err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = f.Error(compiler.ErrCodeGeneric, exitErr.Error())
		return exitErr
	}
	_ = f.Error(compiler.ErrCodeGeneric, err.Error())
	return WrapExitError(ExitCommandError, compiler.ErrCodeGeneric, err)
}

// reportValidation writes every validation error and returns an ExitFailure.
func reportValidation(f *OutputFormatter, errs []compiler.ValidationError) error {
	if f.Format == "json" {
		_ = f.Error(ErrCodeValidation, fmt.Sprintf("%d validation error(s)", len(errs)), validationFindings(errs)...)
	} else {
		fmt.Fprintf(f.Writer, "✗ %d validation error(s)\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(f.Writer, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
