// Package history is the compile-job history store the HTTP API
// (server/api) writes to after each /compile request: one row per compile attempt,
// recording its source hash, when it ran, whether it succeeded, and the
// rendered diagnostic if it failed.
//
// Grounded on server/dao/sqlite's SessionsDB: a *sql.DB opened against
// modernc.org/sqlite (pure Go, no cgo), a `CREATE TABLE IF NOT EXISTS` run
// at construction, and google/uuid-generated row identifiers.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one compile job's outcome.
type Record struct {
	ID         uuid.UUID
	SourceHash string
	CreatedAt  time.Time
	Success    bool
	Diagnostic string // rendered error text; empty on success
}

// HashSource returns the hex-encoded SHA-256 of source, used as Record's
// SourceHash so identical inputs are recognizable across jobs without
// storing the source text itself.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Store is a sqlite-backed compile history DAO.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at file and
// ensures its schema exists.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS compile_jobs (
		id TEXT NOT NULL PRIMARY KEY,
		source_hash TEXT NOT NULL,
		created INTEGER NOT NULL,
		success INTEGER NOT NULL,
		diagnostic TEXT NOT NULL
	);`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a new compile job row and returns it with its generated ID
// and timestamp populated.
func (s *Store) Record(ctx context.Context, sourceHash string, success bool, diagnostic string) (Record, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Record{}, fmt.Errorf("generate id: %w", err)
	}
	now := time.Now()

	stmt, err := s.db.PrepareContext(ctx, `INSERT INTO compile_jobs (id, source_hash, created, success, diagnostic) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Record{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	successInt := 0
	if success {
		successInt = 1
	}
	if _, err := stmt.ExecContext(ctx, id.String(), sourceHash, now.Unix(), successInt, diagnostic); err != nil {
		return Record{}, fmt.Errorf("insert compile job: %w", err)
	}

	return Record{ID: id, SourceHash: sourceHash, CreatedAt: now, Success: success, Diagnostic: diagnostic}, nil
}

// Recent returns up to limit most-recent compile jobs, newest first. Jobs
// recorded within the same second are ordered by insertion.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_hash, created, success, diagnostic FROM compile_jobs ORDER BY created DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var idStr string
		var createdUnix int64
		var successInt int
		var r Record
		if err := rows.Scan(&idStr, &r.SourceHash, &createdUnix, &successInt, &r.Diagnostic); err != nil {
			return nil, fmt.Errorf("scan compile job: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", idStr, err)
		}
		r.ID = id
		r.CreatedAt = time.Unix(createdUnix, 0)
		r.Success = successInt != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
