package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/liqgen/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestProcess creates a process with one delay step of the given length.
func createTestProcess(name string, ms int64) *ir.Process {
	return &ir.Process{
		Name:  name,
		Steps: ir.StepList{ir.Delay{Amount: ms, Unit: ir.UnitMillis}},
	}
}
