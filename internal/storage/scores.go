package storage

import (
	"fmt"
	"time"
)

// ScoreEntry is one row of a mode's high score list.
type ScoreEntry struct {
	ID        int64     `json:"id"`
	Mode      string    `json:"mode"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveScore records a score for mode and returns its row ID.
func (s *Store) SaveScore(mode string, score int) (int64, error) {
	res, err := s.db.Exec("INSERT INTO scores (mode, score) VALUES (?, ?)", mode, score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores returns the best limit scores of mode, highest first. Equal
// scores keep the order they were set in. A limit of 0 means 10.
func (s *Store) TopScores(mode string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, mode, score, created_at FROM scores
		 WHERE mode = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return collect(rows, scanScore)
}

func scanScore(row rowScanner) (ScoreEntry, error) {
	var e ScoreEntry
	var createdAt any
	if err := row.Scan(&e.ID, &e.Mode, &e.Score, &createdAt); err != nil {
		return e, err
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// HighScore returns the best score of mode, or 0 when none is recorded.
func (s *Store) HighScore(mode string) (int, error) {
	var best int
	err := s.db.QueryRow("SELECT COALESCE(MAX(score), 0) FROM scores WHERE mode = ?", mode).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	return best, nil
}

// ClearMode forgets the scores and finished games of mode. Replays and
// achievements are kept. It returns how many games were removed.
func (s *Store) ClearMode(mode string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM scores WHERE mode = ?", mode); err != nil {
		return 0, fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	res, err := tx.Exec("DELETE FROM games WHERE mode = ?", mode)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count cleared games: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return n, nil
}
