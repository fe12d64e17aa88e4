package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
)

// BattleSide is one player's line of a stored battle.
type BattleSide struct {
	Session string `json:"session"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Lines   int    `json:"lines"`
	Sent    int    `json:"sent"` // garbage rows sent to the opponent
}

// BattleRecord is a finished online battle.
type BattleRecord struct {
	ID         int64         `json:"id"`
	MatchID    string        `json:"matchId"`
	Mode       string        `json:"mode"`
	Players    [2]BattleSide `json:"players"`
	Winner     int           `json:"winner"` // 1 or 2, 0 on a draw
	EndReason  string        `json:"endReason"`
	Ticks      uint64        `json:"ticks"`
	DurationMs int64         `json:"durationMs"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// WinnerName returns the winner's display name, or "" on a draw.
func (b BattleRecord) WinnerName() string {
	if b.Winner < 1 || b.Winner > 2 {
		return ""
	}
	return b.Players[b.Winner-1].Name
}

const battleColumns = `id, match_id, mode,
	p1_session, p1_name, p1_score, p1_lines, p1_sent,
	p2_session, p2_name, p2_score, p2_lines, p2_sent,
	winner, end_reason, ticks, duration_ms, created_at`

// SaveBattle records a finished battle and returns its row ID. Match IDs
// are unique; saving the same match twice fails.
func (s *Store) SaveBattle(b BattleRecord) (int64, error) {
	p1, p2 := b.Players[0], b.Players[1]
	res, err := s.db.Exec(
		`INSERT INTO battles (match_id, mode,
			p1_session, p1_name, p1_score, p1_lines, p1_sent,
			p2_session, p2_name, p2_score, p2_lines, p2_sent,
			winner, end_reason, ticks, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.MatchID, b.Mode,
		p1.Session, p1.Name, p1.Score, p1.Lines, p1.Sent,
		p2.Session, p2.Name, p2.Score, p2.Lines, p2.Sent,
		b.Winner, b.EndReason, int64(b.Ticks), b.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save battle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

func scanBattle(row rowScanner) (BattleRecord, error) {
	var b BattleRecord
	var ticks int64
	var createdAt any
	p1, p2 := &b.Players[0], &b.Players[1]
	err := row.Scan(&b.ID, &b.MatchID, &b.Mode,
		&p1.Session, &p1.Name, &p1.Score, &p1.Lines, &p1.Sent,
		&p2.Session, &p2.Name, &p2.Score, &p2.Lines, &p2.Sent,
		&b.Winner, &b.EndReason, &ticks, &b.DurationMs, &createdAt)
	b.Ticks = uint64(ticks)
	b.CreatedAt = parseTime(createdAt)
	return b, err
}

// Battle returns the battle with the given match ID, or ErrNotFound.
func (s *Store) Battle(matchID string) (*BattleRecord, error) {
	b, err := scanBattle(s.db.QueryRow(`SELECT `+battleColumns+` FROM battles WHERE match_id = ?`, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battle: %w", err)
	}
	return &b, nil
}

// RecentBattles returns the latest battles, newest first. An empty player
// returns everyone's battles; otherwise only those player took part in.
func (s *Store) RecentBattles(player string, limit int) ([]BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + battleColumns + ` FROM battles`
	args := []any{}
	if player != "" {
		query += ` WHERE p1_name = ? OR p2_name = ?`
		args = append(args, player, player)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battles: %w", err)
	}
	return collect(rows, scanBattle)
}

// Standing sums up one player's battles.
type Standing struct {
	Name      string `json:"name"`
	Played    int    `json:"played"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Draws     int    `json:"draws"`
	LinesSent int    `json:"linesSent"`
}

// per-player rows of the battles table, one for each side
const battleSides = `
	SELECT p1_name AS name, 1 AS side, winner, p1_sent AS sent FROM battles
	UNION ALL
	SELECT p2_name, 2, winner, p2_sent FROM battles`

const standingColumns = `name, COUNT(*),
	SUM(CASE WHEN winner = side THEN 1 ELSE 0 END),
	SUM(CASE WHEN winner <> 0 AND winner <> side THEN 1 ELSE 0 END),
	SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END),
	SUM(sent)`

func scanStanding(row rowScanner) (Standing, error) {
	var st Standing
	err := row.Scan(&st.Name, &st.Played, &st.Wins, &st.Losses, &st.Draws, &st.LinesSent)
	return st, err
}

// Standings ranks players by wins, then by fewest games played.
func (s *Store) Standings(limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT `+standingColumns+` FROM (`+battleSides+`)
		 GROUP BY name
		 ORDER BY 3 DESC, 2 ASC, name ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query standings: %w", err)
	}
	return collect(rows, scanStanding)
}

// StandingOf returns the record of one player. A player without battles
// gets a zero Standing.
func (s *Store) StandingOf(name string) (Standing, error) {
	st, err := scanStanding(s.db.QueryRow(
		`SELECT `+standingColumns+` FROM (`+battleSides+`)
		 WHERE name = ?
		 GROUP BY name`,
		name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Standing{Name: name}, nil
	}
	if err != nil {
		return Standing{}, fmt.Errorf("storage: cannot query standing: %w", err)
	}
	return st, nil
}

// SaveMatchResult stores a battle handed over by the multiplayer
// coordinator.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	b := BattleRecord{
		MatchID:    data.MatchID,
		Mode:       data.Mode,
		Winner:     data.Winner,
		EndReason:  data.EndReason,
		Ticks:      data.Ticks,
		DurationMs: data.DurationMs,
	}
	for i, p := range data.Players {
		b.Players[i] = BattleSide(p)
	}
	_, err := s.SaveBattle(b)
	return err
}

var _ multiplayer.MatchResultSaver = (*Store)(nil)
