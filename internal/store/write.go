package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/liqgen/internal/ir"
)

// SaveProcess stores p as a new version of the process named p.Name.
// Returns the stored version and whether a new row was inserted.
//
// Versions are content-addressed by ir.ProcessHash, so created_time and
// version never make a new version. Saving content that is already in the
// library inserts nothing; if that content is not the latest version of its
// name it is moved to the end of the history, so LatestProcess returns what
// was saved last.
func (s *Store) SaveProcess(ctx context.Context, p *ir.Process) (ProcessVersion, bool, error) {
	hash, err := ir.ProcessHash(p)
	if err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: %w", err)
	}
	doc, err := marshalProcess(p)
	if err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	existing, err := scanProcessVersion(tx.QueryRowContext(ctx, `
		SELECT id, name, content_hash, document, seq
		FROM processes
		WHERE content_hash = ?
	`, hash))
	switch {
	case err == nil:
		latest, err := latestSeq(ctx, tx, existing.Name)
		if err != nil {
			return ProcessVersion{}, false, fmt.Errorf("save process: %w", err)
		}
		if existing.Seq != latest {
			seq, err := nextSeq(ctx, tx, "processes")
			if err != nil {
				return ProcessVersion{}, false, fmt.Errorf("save process: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE processes SET seq = ? WHERE id = ?`, seq, existing.ID); err != nil {
				return ProcessVersion{}, false, fmt.Errorf("save process: reorder: %w", err)
			}
			existing.Seq = seq
		}
		if err := tx.Commit(); err != nil {
			return ProcessVersion{}, false, fmt.Errorf("save process: commit: %w", err)
		}
		return existing, false, nil

	case !errors.Is(err, sql.ErrNoRows):
		return ProcessVersion{}, false, fmt.Errorf("save process: select existing: %w", err)
	}

	seq, err := nextSeq(ctx, tx, "processes")
	if err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: %w", err)
	}
	v := ProcessVersion{
		ID:          uuid.NewString(),
		Name:        p.Name,
		ContentHash: hash,
		Seq:         seq,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO processes (id, name, content_hash, document, seq)
		VALUES (?, ?, ?, ?, ?)
	`, v.ID, v.Name, v.ContentHash, doc, v.Seq)
	if err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ProcessVersion{}, false, fmt.Errorf("save process: commit: %w", err)
	}

	v.Process, err = unmarshalProcess(doc)
	if err != nil {
		return ProcessVersion{}, false, err
	}
	return v, true, nil
}

// SaveArtifact stores code generated from the process version processID.
// Each (process version, format) pair holds one artifact; saving again
// replaces the code and moves the artifact to the end of the order while
// keeping its ID.
//
// Note: The process referenced by processID must exist (foreign key constraint).
func (s *Store) SaveArtifact(ctx context.Context, processID, format, code string) (Artifact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Artifact{}, fmt.Errorf("save artifact: begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "artifacts")
	if err != nil {
		return Artifact{}, fmt.Errorf("save artifact: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, process_id, format, code, code_hash, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(process_id, format) DO UPDATE SET
			code = excluded.code,
			code_hash = excluded.code_hash,
			seq = excluded.seq
	`, uuid.NewString(), processID, format, code, ir.ArtifactHash(format, code), seq)
	if err != nil {
		return Artifact{}, fmt.Errorf("save artifact: %w", err)
	}

	a, err := scanArtifact(tx.QueryRowContext(ctx, `
		SELECT id, process_id, format, code, code_hash, seq
		FROM artifacts
		WHERE process_id = ? AND format = ?
	`, processID, format))
	if err != nil {
		return Artifact{}, fmt.Errorf("save artifact: select: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Artifact{}, fmt.Errorf("save artifact: commit: %w", err)
	}
	return a, nil
}

// nextSeq allocates the next logical clock value for table.
// Callers hold a transaction; the single connection serializes writers.
func nextSeq(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM "+table).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func latestSeq(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM processes WHERE name = ?`, name).Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq, nil
}
