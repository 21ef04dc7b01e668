package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/processfile"
)

func writeCUEDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processes.cue"), []byte(src), 0644))
	return dir
}

const processesCUE = `package processes

process: FlushA: {
	name: "Flush A"
	steps: [{type: "valve", device: "SV1", action: "open"}]
}

process: Rinse: {
	steps: [
		{type: "pump", device: "Q1"},
		{type: "delay", amount: 1, unit: "s"},
		{type: "pump", device: "Q1", action: "close"},
	]
}
`

func TestCompileText(t *testing.T) {
	dir := writeCUEDir(t, processesCUE)

	stdout, _, err := runCLI(t, "compile", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Compiled 2 process(es)")
	assert.Contains(t, stdout, `FlushA: "Flush A", 1 step(s)`)
	assert.Contains(t, stdout, `Rinse: "Rinse", 3 step(s)`)
}

func TestCompileWritesDocuments(t *testing.T) {
	dir := writeCUEDir(t, processesCUE)
	out := t.TempDir()

	_, _, err := runCLI(t, "compile", "-o", out, dir)
	require.NoError(t, err)

	doc, err := processfile.Load(filepath.Join(out, "Rinse.json"))
	require.NoError(t, err)
	assert.Equal(t, "Rinse", doc.Process.Name)
	assert.Len(t, doc.Process.Steps, 3)
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.Process.CreatedTime)

	assert.FileExists(t, filepath.Join(out, "FlushA.json"))
}

func TestCompileJSON(t *testing.T) {
	dir := writeCUEDir(t, processesCUE)

	stdout, _, err := runCLI(t, "--format", "json", "compile", dir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   []CompiledProcess `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "FlushA", resp.Data[0].Label)
}

func TestCompileInvalidProcess(t *testing.T) {
	dir := writeCUEDir(t, `package processes

process: Empty: { steps: [] }
`)

	stdout, _, err := runCLI(t, "compile", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "process.Empty.")
	assert.Contains(t, stdout, compiler.ErrNoSteps)
}

func TestCompileErrorsAreCommandErrors(t *testing.T) {
	dir := writeCUEDir(t, `package processes

process: Bad: { steps: [{type: "warp"}] }
`)

	stdout, _, err := runCLI(t, "compile", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Compilation failed")

	_, _, err = runCLI(t, "compile", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileQuotedLabel(t *testing.T) {
	dir := writeCUEDir(t, `package processes

process: "Flush A": { steps: [{type: "valve", device: "SV1"}] }
`)
	out := t.TempDir()

	stdout, _, err := runCLI(t, "compile", "-o", out, dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, `Flush A: "Flush A", 1 step(s)`)

	doc, err := processfile.Load(filepath.Join(out, "Flush A.json"))
	require.NoError(t, err)
	assert.Equal(t, "Flush A", doc.Process.Name)
}

func TestCompileRejectsLabelOutsideOutput(t *testing.T) {
	dir := writeCUEDir(t, `package processes

process: "../escape": { steps: [{type: "delay", amount: 1}] }
`)
	root := t.TempDir()
	out := filepath.Join(root, "out")

	stdout, _, err := runCLI(t, "compile", "-o", out, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, compiler.ErrCodeWriteFailed)
	assert.NoFileExists(t, filepath.Join(root, "escape.json"))
}
