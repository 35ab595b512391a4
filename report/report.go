// Package report persists scan reports in SQLite, so dedup numbers can be
// compared across runs of the same corpus.
package report

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chazu/intern/scan"
)

// ErrNotFound indicates the requested report row doesn't exist.
var ErrNotFound = errors.New("report not found")

// Store handles SQLite storage for scan reports.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed bootstraps) a report database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS scans (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		source         TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		tokens         INTEGER NOT NULL,
		distinct_toks  INTEGER NOT NULL,
		token_bytes    INTEGER NOT NULL,
		distinct_bytes INTEGER NOT NULL,
		oversized      INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Row is one persisted scan report.
type Row struct {
	ID        int64
	Source    string
	CreatedAt time.Time
	Report    scan.Report
}

// Save persists a report for the named source and returns its row ID.
func (s *Store) Save(source string, r scan.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO scans
		(source, created_at, tokens, distinct_toks, token_bytes, distinct_bytes, oversized)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source, time.Now().UTC(),
		r.Tokens, r.Distinct, r.TokenBytes, r.DistinctBytes, r.Oversized)
	if err != nil {
		return 0, fmt.Errorf("saving report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// Get loads one report by row ID.
func (s *Store) Get(id int64) (Row, error) {
	row := s.db.QueryRow(`SELECT id, source, created_at, tokens, distinct_toks,
		token_bytes, distinct_bytes, oversized FROM scans WHERE id = ?`, id)

	var out Row
	err := row.Scan(&out.ID, &out.Source, &out.CreatedAt,
		&out.Report.Tokens, &out.Report.Distinct,
		&out.Report.TokenBytes, &out.Report.DistinctBytes,
		&out.Report.Oversized)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, fmt.Errorf("loading report %d: %w", id, err)
	}
	return out, nil
}

// Recent returns up to n reports, newest first.
func (s *Store) Recent(n int) ([]Row, error) {
	rows, err := s.db.Query(`SELECT id, source, created_at, tokens, distinct_toks,
		token_bytes, distinct_bytes, oversized
		FROM scans ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt,
			&r.Report.Tokens, &r.Report.Distinct,
			&r.Report.TokenBytes, &r.Report.DistinctBytes,
			&r.Report.Oversized); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return out, nil
}
