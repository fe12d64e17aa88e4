package storage

import (
	"testing"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

func summary(mode string, score, lines, durationMs int, reason tetris.EndReason) tetris.Summary {
	return tetris.Summary{
		Mode:       mode,
		Seed:       42,
		Score:      score,
		Level:      lines/10 + 1,
		Lines:      lines,
		DurationMs: durationMs,
		Reason:     reason,
		Stats: tetris.Stats{
			TotalPieces: 30,
			TotalLines:  lines,
			MaxCombo:    2,
			HardDrops:   12,
			PieceStats:  map[tetris.PieceType]int{tetris.PieceI: 5, tetris.PieceT: 7},
			ClearCounts: tetris.ClearCounts{Single: 2, Tetris: 1},
		},
	}
}

func TestStoreSaveGame(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveGame(summary("classic", 1200, 12, 90000, tetris.EndTopOut)); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}

	games, err := store.Games("classic", 10)
	if err != nil {
		t.Fatalf("Games() failed: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("Expected 1 game, got %d", len(games))
	}

	g := games[0]
	if g.Score != 1200 || g.Lines != 12 || g.Level != 2 || g.Reason != tetris.EndTopOut {
		t.Errorf("Unexpected game record: %+v", g)
	}
	if g.Stats.PieceStats[tetris.PieceT] != 7 || g.Stats.ClearCounts.Tetris != 1 {
		t.Errorf("Statistics did not round trip: %+v", g.Stats)
	}

	// The score table is fed as well
	high, err := store.HighScore("classic")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 1200 {
		t.Errorf("Expected high score 1200, got %d", high)
	}
}

func TestStoreSaveGameRejectsUnfinished(t *testing.T) {
	store := openTestStore(t)

	for _, reason := range []tetris.EndReason{tetris.EndNone, tetris.EndReset} {
		if _, err := store.SaveGame(summary("classic", 100, 1, 1000, reason)); err == nil {
			t.Errorf("SaveGame() with reason %q should fail", reason)
		}
	}
}

func TestStoreGamesAllModes(t *testing.T) {
	store := openTestStore(t)

	store.SaveGame(summary("classic", 100, 1, 1000, tetris.EndTopOut))
	store.SaveGame(summary("sprint", 900, 20, 60000, tetris.EndCompleted))
	store.SaveGame(summary("ultra", 400, 8, 120000, tetris.EndTimeUp))

	games, err := store.Games("", 0)
	if err != nil {
		t.Fatalf("Games() failed: %v", err)
	}
	if len(games) != 3 {
		t.Errorf("Expected 3 games, got %d", len(games))
	}
	// Newest first
	if games[0].Mode != "ultra" {
		t.Errorf("Expected newest game first, got %s", games[0].Mode)
	}
}

func TestStoreModeStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveGame(summary("sprint", 900, 20, 60000, tetris.EndCompleted))
	store.SaveGame(summary("sprint", 700, 20, 45000, tetris.EndCompleted))
	store.SaveGame(summary("sprint", 300, 6, 20000, tetris.EndTopOut))

	stats, err := store.GetModeStats("sprint")
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if stats.GamesCount != 3 {
		t.Errorf("Expected 3 games, got %d", stats.GamesCount)
	}
	if stats.HighScore != 900 {
		t.Errorf("Expected high score 900, got %d", stats.HighScore)
	}
	if stats.TotalLines != 46 {
		t.Errorf("Expected 46 lines, got %d", stats.TotalLines)
	}
	// Topped-out runs do not count towards the best time
	if stats.BestTimeMs != 45000 {
		t.Errorf("Expected best time 45000, got %d", stats.BestTimeMs)
	}

	empty, err := store.GetModeStats("marathon")
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || empty.BestTimeMs != 0 {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	all, err := store.GetAllModesStats()
	if err != nil {
		t.Fatalf("GetAllModesStats() failed: %v", err)
	}
	if len(all) != 1 || all["sprint"] == nil {
		t.Errorf("Expected stats for sprint only, got %v", all)
	}
}

func TestStoreClearMode(t *testing.T) {
	store := openTestStore(t)

	store.SaveGame(summary("sprint", 900, 20, 60000, tetris.EndCompleted))
	store.SaveGame(summary("sprint", 400, 8, 30000, tetris.EndTopOut))
	store.SaveGame(summary("classic", 300, 3, 20000, tetris.EndTopOut))

	n, err := store.ClearMode("sprint")
	if err != nil {
		t.Fatalf("ClearMode() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 cleared games, got %d", n)
	}

	if games, _ := store.Games("sprint", 10); len(games) != 0 {
		t.Errorf("Expected no sprint games after clear, got %d", len(games))
	}
	if high, _ := store.HighScore("sprint"); high != 0 {
		t.Errorf("Expected sprint high score to be cleared, got %d", high)
	}
	if high, _ := store.HighScore("classic"); high != 300 {
		t.Errorf("Classic scores should not be affected, got %d", high)
	}
}
