package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Provider on a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(path, ":memory:") {
		// every connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			score INTEGER NOT NULL,
			height INTEGER NOT NULL,
			fish INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player, score DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveScore stores e, assigning an id and timestamp when missing.
func (s *SQLiteStore) SaveScore(ctx context.Context, e Entry) (Entry, error) {
	if e.Player == "" {
		return Entry{}, errors.New("player name is required")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `INSERT INTO scores (id, player, score, height, fish, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		e.ID, e.Player, e.Score, e.Height, e.Fish, e.CreatedAt.UnixMilli(),
	); err != nil {
		return Entry{}, fmt.Errorf("failed to save score: %w", err)
	}
	return e, nil
}

// GetBest returns the highest scoring run of player.
func (s *SQLiteStore) GetBest(ctx context.Context, player string) (Entry, error) {
	query := `SELECT id, player, score, height, fish, created_at
		FROM scores WHERE player = ?
		ORDER BY score DESC, created_at ASC LIMIT 1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, player))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get best score: %w", err)
	}
	return e, nil
}

// GetTopN returns up to n runs, best first.
func (s *SQLiteStore) GetTopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	query := `SELECT id, player, score, height, fish, created_at
		FROM scores ORDER BY score DESC, created_at ASC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created int64
	if err := row.Scan(&e.ID, &e.Player, &e.Score, &e.Height, &e.Fish, &created); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.UnixMilli(created)
	return e, nil
}
