package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-tetris/internal/replay"
)

// ReplayInfo is the listing view of a stored replay.
type ReplayInfo struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Seed       int64     `json:"seed"`
	Score      int       `json:"score"`
	DurationMs int       `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SaveReplay stores a replay and prunes the oldest ones beyond the retention
// limit. A replay without an ID is given a fresh one. Returns the stored ID.
func (s *Store) SaveReplay(r *replay.Replay) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	var buf bytes.Buffer
	if err := replay.Encode(&buf, r); err != nil {
		return "", fmt.Errorf("storage: cannot encode replay: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO replays (id, mode, seed, score, duration_ms, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameMode, r.Seed, r.FinalScore, r.DurationMs, buf.Bytes(),
		r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save replay: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM replays WHERE id NOT IN (
			SELECT id FROM replays ORDER BY created_at DESC, rowid DESC LIMIT ?
		 )`,
		s.maxReplays,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot prune replays: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit replay: %w", err)
	}
	return r.ID, nil
}

// Replay loads and decodes a stored replay. Returns ErrNotFound for unknown IDs.
func (s *Store) Replay(id string) (*replay.Replay, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM replays WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: replay %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}

	r, err := replay.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot decode replay %s: %w", id, err)
	}
	return r, nil
}

// Replays lists stored replays, newest first.
func (s *Store) Replays(limit int) ([]ReplayInfo, error) {
	if limit <= 0 {
		limit = s.maxReplays
	}

	rows, err := s.db.Query(
		`SELECT id, mode, seed, score, duration_ms, created_at
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	return collect(rows, func(row rowScanner) (ReplayInfo, error) {
		var info ReplayInfo
		var createdAt any
		err := row.Scan(&info.ID, &info.Mode, &info.Seed, &info.Score, &info.DurationMs, &createdAt)
		info.CreatedAt = parseTime(createdAt)
		return info, err
	})
}

// DeleteReplay removes a stored replay. Returns ErrNotFound for unknown IDs.
func (s *Store) DeleteReplay(id string) error {
	res, err := s.db.Exec("DELETE FROM replays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: replay %s: %w", id, ErrNotFound)
	}
	return nil
}
