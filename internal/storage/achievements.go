package storage

import (
	"fmt"
	"time"
)

// UnlockedAchievement is an achievement ID with the time it was first earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// UnlockAchievement marks an achievement as earned. Unlocking twice is a
// no-op; the returned bool reports whether this call unlocked it.
func (s *Store) UnlockAchievement(id string) (bool, error) {
	res, err := s.db.Exec("INSERT OR IGNORE INTO achievements (id) VALUES (?)", id)
	if err != nil {
		return false, fmt.Errorf("storage: cannot unlock achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot unlock achievement: %w", err)
	}
	return n > 0, nil
}

// Achievements lists every unlocked achievement in unlock order.
func (s *Store) Achievements() ([]UnlockedAchievement, error) {
	rows, err := s.db.Query("SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at, id")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query achievements: %w", err)
	}
	return collect(rows, func(row rowScanner) (UnlockedAchievement, error) {
		var a UnlockedAchievement
		var at any
		err := row.Scan(&a.ID, &at)
		a.UnlockedAt = parseTime(at)
		return a, err
	})
}
