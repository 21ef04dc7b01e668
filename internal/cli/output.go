package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/liqgen/internal/compiler"
)

// Exit statuses. A process or document that is wrong exits 1; a command that
// could not run at all (missing path, bad flag, library failure) exits 2.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError is returned by a command to choose the exit status of liqgen.
type ExitError struct {
	Code    int // ExitFailure or ExitCommandError
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the status carried by err, or ExitFailure for errors
// that carry none.
func GetExitCode(err error) int {
	if exitErr := (*ExitError)(nil); errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Finding is one coded problem inside an error response: a validation
// error (E2xx), a lint warning (W3xx) or a CUE load error (E00x).
type Finding struct {
	Code     string `json:"code"`
	Field    string `json:"field,omitempty"`    // steps[1].device, process.FlushA.steps
	Message  string `json:"message"`
	Position string `json:"position,omitempty"` // file:line:col of CUE sources
}

func (f Finding) String() string {
	s := f.Code
	if f.Field != "" {
		s += " " + f.Field
	}
	s += ": " + f.Message
	if f.Position != "" {
		s = f.Position + ": " + s
	}
	return s
}

func validationFindings(errs []compiler.ValidationError) []Finding {
	out := make([]Finding, len(errs))
	for i, e := range errs {
		out[i] = Finding{Code: e.Code, Field: e.Field, Message: e.Message}
	}
	return out
}

func lintFindings(ws []compiler.Warning) []Finding {
	out := make([]Finding, len(ws))
	for i, w := range ws {
		out[i] = Finding{Code: w.Code, Field: w.Field, Message: w.Message}
	}
	return out
}

// loadFindings converts CUE load and compile errors, keeping source
// positions where the loader recorded one.
func loadFindings(errs []error) []Finding {
	out := make([]Finding, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		out[i] = Finding{Code: code, Message: message}
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			out[i].Position = fmt.Sprintf("%s:%d:%d", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
	}
	return out
}

// CLIResponse is the envelope every command writes under --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError heads a failed response. Code is a load code (E00x), a CLI code
// (E101-E104) or E200 when Findings hold the validation errors.
type CLIError struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Findings []Finding `json:"findings,omitempty"`
}

// OutputFormatter writes command results as text or as a CLIResponse.
// Diagnostics (verbose logs, lint warnings during generate) go to ErrWriter
// so generated code and JSON on Writer stay clean.
type OutputFormatter struct {
	Format    string // "text" or "json"
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success writes data; text mode prints it with fmt.Fprintln.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure with no payload.
func (f *OutputFormatter) Error(code, message string, findings ...Finding) error {
	return f.Failure(nil, CLIError{Code: code, Message: message, Findings: findings})
}

// Failure writes a failure that still carries per-item results, such as the
// validation result of every file or every scenario run.
func (f *OutputFormatter) Failure(data any, e CLIError) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "error", Data: data, Error: &e})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	for _, finding := range e.Findings {
		fmt.Fprintf(f.Writer, "  %s\n", finding)
	}
	return nil
}

// VerboseLog writes a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.Diagnostics(), format+"\n", args...)
	}
}

// Diagnostics is where non-result output goes: ErrWriter, else Writer.
func (f *OutputFormatter) Diagnostics() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// encode writes one response. Generated code holds < > & so HTML escaping
// is off.
func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
