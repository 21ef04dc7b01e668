package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/ir"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

func TestSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"code": "if (a < b && c > d) {"}))
	assert.Contains(t, buf.String(), "if (a < b && c > d) {")

	resp := decodeResponse(t, buf)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestValidationFindingsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	errs := compiler.Validate(&ir.Process{Name: "empty"})
	require.NoError(t, f.Error(ErrCodeValidation, "1 validation error(s)", validationFindings(errs)...))

	resp := decodeResponse(t, buf)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, []Finding{{Code: compiler.ErrNoSteps, Field: "steps", Message: "process must have at least one step"}}, resp.Error.Findings)
}

func TestFailureKeepsData(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Failure([]string{"flush.json"}, CLIError{Code: ErrCodeTestFailed, Message: "1 scenario(s) failed"}))

	resp := decodeResponse(t, buf)
	assert.Equal(t, []any{"flush.json"}, resp.Data)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Empty(t, resp.Error.Findings)
}

func TestErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeValidation, "2 validation error(s)",
		Finding{Code: compiler.ErrDeviceEmpty, Field: "steps[0].device", Message: "valve device is required"},
		Finding{Code: compiler.ErrCodeCompile, Message: "unknown field", Position: "flush.cue:3:5"},
	))
	assert.Equal(t, "Error [E200]: 2 validation error(s)\n"+
		"  E202 steps[0].device: valve device is required\n"+
		"  flush.cue:3:5: E008: unknown field\n", buf.String())
}

func TestLoadFindingsKeepPositions(t *testing.T) {
	file := token.NewFile("flush.cue", -1, 100)
	file.SetLinesForContent([]byte("package p\n\nprocess: A: {}\n"))
	pos := file.Pos(11, token.NoRelPos)

	findings := loadFindings([]error{
		&compiler.LoadError{Code: compiler.ErrCodeCompile, Message: "process.A: steps is required", Pos: pos},
		errors.New("disk on fire"),
	})
	require.Len(t, findings, 2)
	assert.Equal(t, "flush.cue:3:1", findings[0].Position)
	assert.Equal(t, compiler.ErrCodeCompile, findings[0].Code)
	assert.Equal(t, Finding{Code: compiler.ErrCodeGeneric, Message: "disk on fire"}, findings[1])
}

func TestVerboseLogUsesDiagnostics(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tt.verbose}

			f.VerboseLog("Processing %s", "flush.json")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Equal(t, "Processing flush.json\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestDiagnosticsFallsBackToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}
	assert.Same(t, buf, f.Diagnostics())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "invalid", errors.New("E201")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: invalid: E201", wrapped.Error())
}
