package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// GameRecord is a finished game as persisted in the games table.
type GameRecord struct {
	ID         int64            `json:"id"`
	Mode       string           `json:"mode"`
	Seed       int64            `json:"seed"`
	Score      int              `json:"score"`
	Level      int              `json:"level"`
	Lines      int              `json:"lines"`
	DurationMs int              `json:"durationMs"`
	Reason     tetris.EndReason `json:"reason"`
	Stats      tetris.Stats     `json:"statistics"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// SaveGame records a finished session in the games table and its score in
// the scores table. Sessions ended by a reset are not recorded.
func (s *Store) SaveGame(sum tetris.Summary) (int64, error) {
	if sum.Reason == tetris.EndReset || sum.Reason == tetris.EndNone {
		return 0, fmt.Errorf("storage: cannot save game: session not finished (reason %q)", sum.Reason)
	}

	stats, err := json.Marshal(sum.Stats)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode statistics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO games (mode, seed, score, level, lines, duration_ms, end_reason, statistics)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.Mode, sum.Seed, sum.Score, sum.Level, sum.Lines, sum.DurationMs, string(sum.Reason), string(stats),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO scores (mode, score) VALUES (?, ?)", sum.Mode, sum.Score); err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit game: %w", err)
	}
	return id, nil
}

// Games returns the most recent finished games, newest first.
// An empty mode returns games of every mode.
func (s *Store) Games(mode string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, mode, seed, score, level, lines, duration_ms, end_reason, statistics, created_at
		 FROM games`
	args := []any{}
	if mode != "" {
		query += " WHERE mode = ?"
		args = append(args, mode)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	return collect(rows, scanGame)
}

func scanGame(row rowScanner) (GameRecord, error) {
	var g GameRecord
	var reason, stats string
	var createdAt any
	if err := row.Scan(&g.ID, &g.Mode, &g.Seed, &g.Score, &g.Level, &g.Lines,
		&g.DurationMs, &reason, &stats, &createdAt); err != nil {
		return g, err
	}
	g.Reason = tetris.EndReason(reason)
	if err := json.Unmarshal([]byte(stats), &g.Stats); err != nil {
		return g, fmt.Errorf("decode statistics of game %d: %w", g.ID, err)
	}
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

// ModeStats contains aggregated statistics for a mode.
type ModeStats struct {
	Mode       string    `json:"mode"`
	GamesCount int       `json:"games"`
	HighScore  int       `json:"highScore"`
	AvgScore   float64   `json:"avgScore"`
	TotalScore int64     `json:"totalScore"`
	TotalLines int64     `json:"totalLines"`
	BestTimeMs int       `json:"bestTimeMs,omitempty"` // fastest completed run, 0 if none
	LastPlayed time.Time `json:"lastPlayed"`
}

// GetModeStats retrieves aggregated statistics for a specific mode.
func (s *Store) GetModeStats(mode string) (*ModeStats, error) {
	stats := &ModeStats{Mode: mode}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), COALESCE(SUM(lines), 0), MAX(created_at)
		 FROM games WHERE mode = ?`,
		mode,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.TotalLines, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	var best sql.NullInt64
	err = s.db.QueryRow(
		`SELECT MIN(duration_ms) FROM games WHERE mode = ? AND end_reason = ?`,
		mode, string(tetris.EndCompleted),
	).Scan(&best)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get best time: %w", err)
	}
	if best.Valid {
		stats.BestTimeMs = int(best.Int64)
	}

	return stats, nil
}

// GetAllModesStats retrieves statistics for all modes that have been played.
func (s *Store) GetAllModesStats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(`SELECT DISTINCT mode FROM games`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all modes stats: %w", err)
	}

	modes, err := collect(rows, func(row rowScanner) (string, error) {
		var m string
		err := row.Scan(&m)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*ModeStats, len(modes))
	for _, m := range modes {
		ms, err := s.GetModeStats(m)
		if err != nil {
			return nil, err
		}
		stats[m] = ms
	}
	return stats, nil
}
