package store

import "github.com/roach88/liqgen/internal/ir"

// ProcessVersion is one stored version of a process.
type ProcessVersion struct {
	ID          string
	Name        string
	ContentHash string
	Seq         int64
	Process     *ir.Process
}

// ProcessSummary describes the latest version of a named process.
type ProcessSummary struct {
	Name        string
	LatestID    string
	ContentHash string
	Seq         int64
	Versions    int
}

// Artifact is code generated from one process version in one format.
type Artifact struct {
	ID        string
	ProcessID string
	Format    string
	Code      string
	CodeHash  string
	Seq       int64
}
