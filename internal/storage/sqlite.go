// Package storage provides SQLite-based persistence for the leaderboard and
// the per-install profile.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	// ErrWriteFailed is wrapped by every leaderboard write that could not be committed.
	ErrWriteFailed = errors.New("storage: write failed")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage: store is closed")
)

// DefaultTopN is the ranking size used when a caller passes a non-positive limit.
const DefaultTopN = 20

// Store manages the SQLite database connection for the leaderboard and profile tables.
// A single Store is shared by every component of the process.
type Store struct {
	db     *sql.DB
	logger *log.Logger

	// Leaderboard writes are serialized; lastAchieved keeps achieved_at strictly increasing.
	writeMu      sync.Mutex
	lastAchieved int64
	now          func() time.Time

	watchMu  sync.Mutex
	watchers map[chan struct{}]struct{}

	closed    chan struct{}
	closeOnce sync.Once
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// SQLite has a single writer anyway; one connection also gives every
	// reader a view that is either before or after a whole insert.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: cannot enable WAL mode: %w", err)
		}
	}

	store := &Store{
		db:       db,
		logger:   log.Default().WithPrefix("storage"),
		now:      time.Now,
		watchers: make(map[chan struct{}]struct{}),
		closed:   make(chan struct{}),
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// SetLogger replaces the logger used for background watcher failures.
func (s *Store) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger.WithPrefix("storage")
	}
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			session_id TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			score INTEGER NOT NULL CHECK (score >= 0),
			achieved_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC, achieved_at ASC);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id);

		CREATE TABLE IF NOT EXISTS profile (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (scope, key)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close stops every live ranking watcher and closes the database connection.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

// isClosed reports whether Close has been called.
func (s *Store) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
