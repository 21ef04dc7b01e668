package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/compiler"
)

func TestValidateValid(t *testing.T) {
	path := writeFile(t, "rinse.json", rinseJSON)

	stdout, _, err := runCLI(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+" (Rinse)\n", stdout)
}

func TestValidateReportsEveryFile(t *testing.T) {
	good := writeFile(t, "rinse.json", rinseJSON)
	empty := writeFile(t, "empty.json", emptyProcessJSON)
	broken := writeFile(t, "broken.json", `{"steps": [`)

	stdout, _, err := runCLI(t, "validate", good, empty, broken)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✓ "+good)
	assert.Contains(t, stdout, "✗ "+empty+" (Nothing)")
	assert.Contains(t, stdout, compiler.ErrNoSteps)
	assert.Contains(t, stdout, "✗ "+broken)
	assert.Contains(t, stdout, ErrCodeDocument)
	assert.Contains(t, stdout, "2 of 3 process(es) invalid")
}

func TestValidateWarningsDoNotFail(t *testing.T) {
	path := writeFile(t, "odd.json", `{"name": "Odd", "steps": [{"type": "pump", "device": "SV1", "action": "open"}]}`)

	stdout, _, err := runCLI(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, compiler.WarnWrongDeviceKind)
}

func TestValidateJSON(t *testing.T) {
	empty := writeFile(t, "empty.json", emptyProcessJSON)

	stdout, _, err := runCLI(t, "--format", "json", "validate", empty)
	require.Error(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   []ValidationResult `json:"data"`
		Error  CLIError           `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Data, 1)
	assert.False(t, resp.Data[0].Valid)
	assert.Equal(t, compiler.ErrNoSteps, resp.Data[0].Errors[0].Code)
}

func TestValidateMissingFileIsCommandError(t *testing.T) {
	_, _, err := runCLI(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
