package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/config"
	"github.com/roach88/liqgen/internal/testutil"
)

// runCLI runs the root command with default configuration, a no-op logger
// and the deterministic clock, returning stdout, stderr and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWith(t, config.DefaultConfig(), args...)
}

func runCLIWith(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	opts := &RootOptions{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    testutil.NewDeterministicClock().Now,
	}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeFile writes content to name inside a fresh temp directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const emptyProcessJSON = `{"name": "Nothing", "steps": []}`

const rinseJSON = `{
  "name": "Rinse",
  "description": "rinse line B",
  "steps": [
    {"type": "valve", "device": "SV2", "action": "open"},
    {"type": "loop", "count": 2, "steps": [
      {"type": "pump", "device": "Q1", "action": "open"},
      {"type": "delay", "amount": 500, "unit": "ms"}
    ]},
    {"type": "valve", "device": "SV2", "action": "close"}
  ]
}
`
