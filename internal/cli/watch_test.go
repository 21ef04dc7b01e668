package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestWatchFileCallsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "flush.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, zap.NewNop(), func() {
			calls.Add(1)
		})
	}()

	// The watcher registers asynchronously; keep touching the file until
	// a change is seen.
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(other, []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(path, []byte(`{"steps": []}`), 0644))
		time.Sleep(50 * time.Millisecond)
	}
	assert.Positive(t, calls.Load(), "onChange was never called")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "flush.json"),
		time.Millisecond, zap.NewNop(), func() {})
	assert.Error(t, err)
}
