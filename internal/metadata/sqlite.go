package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

const (
	// timeFormat is the ISO 8601 format used for all timestamps in SQLite.
	timeFormat = "2006-01-02T15:04:05.000Z"
)

// SQLiteStore implements the Store interface using SQLite as the backing
// database. It provides durable, ACID-compliant metadata storage suitable
// for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore with the given DSN and initializes
// the database schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing SQLite database: %w", err)
	}
	return s, nil
}

// initDB applies PRAGMAs and creates the required tables.
// This is safe to call multiple times (idempotent via IF NOT EXISTS).
func (s *SQLiteStore) initDB() error {
	// Apply PRAGMAs for performance and correctness.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("executing %q: %w", p, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			storage_key TEXT NOT NULL UNIQUE,
			created_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS songs (
			id       INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			artist   TEXT NOT NULL,
			album    TEXT NOT NULL,
			duration TEXT NOT NULL,
			year     TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Insert initial schema version if not present.
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, ?)`,
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting schema version: %w", err)
	}

	return nil
}

// Close closes the underlying SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks connectivity to the SQLite database.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- Resource operations ----

// CreateResource inserts a new resource record and assigns its ID from the
// AUTOINCREMENT sequence.
func (s *SQLiteStore) CreateResource(ctx context.Context, res *ResourceRecord) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (storage_key, created_at) VALUES (?, ?)`,
		res.StorageKey,
		res.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("resource already exists for storage key %q", res.StorageKey)
		}
		return fmt.Errorf("creating resource: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading assigned resource ID: %w", err)
	}
	res.ID = id
	return nil
}

// GetResource retrieves a resource record by ID. Returns (nil, nil) when no
// record exists.
func (s *SQLiteStore) GetResource(ctx context.Context, id int64) (*ResourceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, storage_key, created_at FROM resources WHERE id = ?`, id,
	)

	var r ResourceRecord
	var createdAtStr string
	err := row.Scan(&r.ID, &r.StorageKey, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting resource %d: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(timeFormat, createdAtStr)
	return &r, nil
}

// ResourceExists checks whether a resource record with the given ID exists.
func (s *SQLiteStore) ResourceExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking resource %d: %w", id, err)
	}
	return count > 0, nil
}

// DeleteResource removes the resource record with the given ID.
func (s *SQLiteStore) DeleteResource(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM resources WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting resource %d: %w", id, err)
	}
	return nil
}

// ---- Song operations ----

// CreateSong inserts a new song record under its caller-assigned ID.
func (s *SQLiteStore) CreateSong(ctx context.Context, song *SongRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO songs (id, name, artist, album, duration, year)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		song.ID,
		song.Name,
		song.Artist,
		song.Album,
		song.Duration,
		song.Year,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY") {
			return fmt.Errorf("song already exists for ID %d", song.ID)
		}
		return fmt.Errorf("creating song %d: %w", song.ID, err)
	}
	return nil
}

// GetSong retrieves a song record by ID. Returns (nil, nil) when no record
// exists.
func (s *SQLiteStore) GetSong(ctx context.Context, id int64) (*SongRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, artist, album, duration, year FROM songs WHERE id = ?`, id,
	)

	var sg SongRecord
	err := row.Scan(&sg.ID, &sg.Name, &sg.Artist, &sg.Album, &sg.Duration, &sg.Year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting song %d: %w", id, err)
	}
	return &sg, nil
}

// SongExists checks whether a song record with the given ID exists.
func (s *SQLiteStore) SongExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM songs WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking song %d: %w", id, err)
	}
	return count > 0, nil
}

// DeleteSong removes the song record with the given ID.
func (s *SQLiteStore) DeleteSong(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM songs WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting song %d: %w", id, err)
	}
	return nil
}

// Ensure SQLiteStore implements Store at compile time.
var _ Store = (*SQLiteStore)(nil)
