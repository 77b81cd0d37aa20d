// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed transformations in a local SQLite
// database so a user can recover earlier outputs within and across sessions.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

const dbFile = "history.db"

const defaultMaxEntries = 200

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("history record not found")

// Store manages the transformation history database.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore opens or creates the history database at cfg.DataDir/history.db,
// creating the schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("history data directory not set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxEntries := cfg.MaxEntries
	if maxEntries == 0 {
		maxEntries = defaultMaxEntries
	}

	s := &Store{db: db, maxEntries: maxEntries}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS transformations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_ids TEXT NOT NULL,
			input_text TEXT NOT NULL,
			output_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transformations_created_at
			ON transformations(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one completed transformation and prunes rows past the cap.
// The stored timestamp is rec.CreatedAt, or now when unset.
func (s *Store) Record(rec types.TransformationRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	promptIDs, err := json.Marshal(rec.PromptIDs)
	if err != nil {
		return 0, fmt.Errorf("encoding prompt ids: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO transformations (created_at, model, prompt_ids, input_text, output_text)
		 VALUES (?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339Nano), rec.Model, string(promptIDs), rec.InputText, rec.OutputText,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}

	if s.maxEntries > 0 {
		if err := s.prune(); err != nil {
			return id, fmt.Errorf("pruning history: %w", err)
		}
	}
	return id, nil
}

// prune deletes the oldest rows beyond maxEntries.
func (s *Store) prune() error {
	_, err := s.db.Exec(
		`DELETE FROM transformations WHERE id NOT IN (
			SELECT id FROM transformations ORDER BY id DESC LIMIT ?
		)`, s.maxEntries,
	)
	return err
}

// Recent returns the newest records, newest first. A non-positive limit
// uses the store cap.
func (s *Store) Recent(limit int) ([]types.TransformationRecord, error) {
	if limit <= 0 {
		limit = s.maxEntries
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, model, prompt_ids, input_text, output_text
		 FROM transformations ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.TransformationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one record by ID.
func (s *Store) Get(id int64) (types.TransformationRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, model, prompt_ids, input_text, output_text
		 FROM transformations WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TransformationRecord{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

// Count returns the number of retained records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT count(*) FROM transformations`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (types.TransformationRecord, error) {
	var rec types.TransformationRecord
	var createdAt, promptIDs string

	if err := row.Scan(&rec.ID, &createdAt, &rec.Model, &promptIDs, &rec.InputText, &rec.OutputText); err != nil {
		return types.TransformationRecord{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.TransformationRecord{}, fmt.Errorf("parsing timestamp %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts

	if err := json.Unmarshal([]byte(promptIDs), &rec.PromptIDs); err != nil {
		return types.TransformationRecord{}, fmt.Errorf("decoding prompt ids: %w", err)
	}
	return rec, nil
}
