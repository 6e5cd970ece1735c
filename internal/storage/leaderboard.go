package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is one finished game. Records are inserted once and never changed.
type ScoreRecord struct {
	RecordID   string
	UserID     string
	SessionID  string
	Username   string
	Score      int
	AchievedAt time.Time
}

// PlayerStats aggregates every record of one user.
type PlayerStats struct {
	UserID      string
	Username    string // Name on the most recent record
	BestScore   int
	GamesPlayed int
	FirstPlayed time.Time
	LastPlayed  time.Time
}

// Insert appends a new record and returns it as stored.
// A missing RecordID is generated; AchievedAt is always assigned by the store.
// Every failure wraps ErrWriteFailed.
func (s *Store) Insert(ctx context.Context, rec ScoreRecord) (ScoreRecord, error) {
	if s.isClosed() {
		return rec, fmt.Errorf("%w: %w", ErrWriteFailed, ErrClosed)
	}
	if rec.UserID == "" || rec.SessionID == "" {
		return rec, fmt.Errorf("%w: user and session ids are required", ErrWriteFailed)
	}
	if rec.Score < 0 {
		return rec, fmt.Errorf("%w: negative score %d", ErrWriteFailed, rec.Score)
	}
	if rec.RecordID == "" {
		rec.RecordID = uuid.New().String()
	}

	s.writeMu.Lock()
	achieved := s.nextAchievedAt()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (record_id, user_id, session_id, username, score, achieved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RecordID, rec.UserID, rec.SessionID, rec.Username, rec.Score, achieved,
	)
	if err == nil {
		s.lastAchieved = achieved
	}
	s.writeMu.Unlock()

	if err != nil {
		return rec, fmt.Errorf("%w: cannot insert score: %w", ErrWriteFailed, err)
	}

	rec.AchievedAt = time.UnixMilli(achieved)
	s.notifyWatchers()
	return rec, nil
}

// nextAchievedAt returns a millisecond timestamp later than any previous insert.
// Must be called with writeMu held.
func (s *Store) nextAchievedAt() int64 {
	ms := s.now().UnixMilli()
	if ms <= s.lastAchieved {
		ms = s.lastAchieved + 1
	}
	return ms
}

// TopScores retrieves the top N records.
// Results are ordered by score descending, earliest achievement first on ties.
func (s *Store) TopScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultTopN
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, user_id, session_id, username, score, achieved_at
		 FROM scores
		 ORDER BY score DESC, achieved_at ASC, seq ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]ScoreRecord, 0, limit)
	for rows.Next() {
		var e ScoreRecord
		var achieved int64
		if err := rows.Scan(&e.RecordID, &e.UserID, &e.SessionID, &e.Username, &e.Score, &achieved); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.AchievedAt = time.UnixMilli(achieved)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scores").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count scores: %w", err)
	}
	return n, nil
}

// PlayerStats retrieves aggregated statistics for one user.
// Returns nil if the user has no records.
func (s *Store) PlayerStats(ctx context.Context, userID string) (*PlayerStats, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	stats := &PlayerStats{UserID: userID}
	var first, last sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), MIN(achieved_at), MAX(achieved_at)
		 FROM scores WHERE user_id = ?`,
		userID,
	).Scan(&stats.GamesPlayed, &stats.BestScore, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	if stats.GamesPlayed == 0 {
		return nil, nil
	}
	stats.FirstPlayed = time.UnixMilli(first.Int64)
	stats.LastPlayed = time.UnixMilli(last.Int64)

	err = s.db.QueryRowContext(ctx,
		`SELECT username FROM scores WHERE user_id = ? ORDER BY achieved_at DESC LIMIT 1`,
		userID,
	).Scan(&stats.Username)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get player name: %w", err)
	}

	return stats, nil
}
