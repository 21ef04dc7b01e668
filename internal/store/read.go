package store

import (
	"context"
	"fmt"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// LatestProcess returns the most recently saved version of the named process.
// Returns sql.ErrNoRows if no process has that name.
func (s *Store) LatestProcess(ctx context.Context, name string) (ProcessVersion, error) {
	return scanProcessVersion(s.db.QueryRowContext(ctx, `
		SELECT id, name, content_hash, document, seq
		FROM processes
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name))
}

// ProcessByID retrieves a single process version by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ProcessByID(ctx context.Context, id string) (ProcessVersion, error) {
	return scanProcessVersion(s.db.QueryRowContext(ctx, `
		SELECT id, name, content_hash, document, seq
		FROM processes
		WHERE id = ?
	`, id))
}

// History returns every version of the named process, oldest first.
// Returns an empty slice (not nil) if the name is unknown.
func (s *Store) History(ctx context.Context, name string) ([]ProcessVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, content_hash, document, seq
		FROM processes
		WHERE name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	versions := []ProcessVersion{}
	for rows.Next() {
		v, err := scanProcessVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan process version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return versions, nil
}

// ListProcesses summarizes every named process in the library, ordered by
// name.
func (s *Store) ListProcesses(ctx context.Context) ([]ProcessSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.id, p.content_hash, p.seq, v.versions
		FROM processes p
		JOIN (
			SELECT name, MAX(seq) AS latest, COUNT(*) AS versions
			FROM processes
			GROUP BY name
		) v ON p.name = v.name AND p.seq = v.latest
		ORDER BY p.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query processes: %w", err)
	}
	defer rows.Close()

	summaries := []ProcessSummary{}
	for rows.Next() {
		var sum ProcessSummary
		if err := rows.Scan(&sum.Name, &sum.LatestID, &sum.ContentHash, &sum.Seq, &sum.Versions); err != nil {
			return nil, fmt.Errorf("scan process summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processes: %w", err)
	}
	return summaries, nil
}

// Artifacts returns the code generated from one process version, in the
// order it was saved. Returns an empty slice (not nil) if there is none.
func (s *Store) Artifacts(ctx context.Context, processID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, process_id, format, code, code_hash, seq
		FROM artifacts
		WHERE process_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, processID)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

// scanProcessVersion scans one processes row. Scan errors, including
// sql.ErrNoRows, are returned unwrapped.
func scanProcessVersion(row scanner) (ProcessVersion, error) {
	var v ProcessVersion
	var doc string
	if err := row.Scan(&v.ID, &v.Name, &v.ContentHash, &doc, &v.Seq); err != nil {
		return ProcessVersion{}, err
	}
	p, err := unmarshalProcess(doc)
	if err != nil {
		return ProcessVersion{}, err
	}
	v.Process = p
	return v, nil
}

func scanArtifact(row scanner) (Artifact, error) {
	var a Artifact
	if err := row.Scan(&a.ID, &a.ProcessID, &a.Format, &a.Code, &a.CodeHash, &a.Seq); err != nil {
		return Artifact{}, err
	}
	return a, nil
}
