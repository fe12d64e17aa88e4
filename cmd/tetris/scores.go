package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top 10 results for a mode. Race modes are ranked by the
fastest completed run, all others by score.

Without a mode, print a summary of every mode that has been played.
With --clear, forget the scores and games of the given mode.

Examples:
  tetris scores
  tetris scores classic
  tetris scores sprint
  tetris scores marathon --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

var flagClearScores bool

func init() {
	scoresCmd.Flags().BoolVar(&flagClearScores, "clear", false, "Delete the scores and games of the mode")
}

func runScores(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	if len(args) == 0 {
		if flagClearScores {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a mode")
			os.Exit(1)
		}
		printModeSummary(store)
		return
	}

	modeID := args[0]
	mode, err := registry.Get(modeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", modeID)
		fmt.Fprintln(os.Stderr, "Run 'tetris modes' to see available modes.")
		os.Exit(1)
	}

	if flagClearScores {
		n, err := store.ClearMode(modeID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared %s: %d games removed.\n", mode.Title, n)
		return
	}

	fmt.Printf("High Scores - %s\n", mode.Title)
	fmt.Println()

	if modes.IsRace(mode) {
		printRaceTimes(store, modeID)
		return
	}

	scores, err := store.TopScores(modeID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tetris play %s' to set the first high score!\n", modeID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if best, err := store.HighScore(modeID); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}

func printRaceTimes(store *storage.Store, modeID string) {
	games, err := store.Games(modeID, 1000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving games: %v\n", err)
		os.Exit(1)
	}

	finished := make([]storage.GameRecord, 0, len(games))
	for _, g := range games {
		if g.Reason == tetris.EndCompleted {
			finished = append(finished, g)
		}
	}
	sort.SliceStable(finished, func(i, j int) bool {
		return finished[i].DurationMs < finished[j].DurationMs
	})

	if len(finished) == 0 {
		fmt.Println("No completed runs yet.")
		fmt.Println()
		fmt.Printf("Play 'tetris play %s' to set the first time!\n", modeID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-6s  %s\n", "Rank", "Time", "Pieces", "Date")
	fmt.Printf("  %-4s  %-10s  %-6s  %s\n", "----", "----", "------", "----")
	for i, g := range finished[:min(10, len(finished))] {
		fmt.Printf("  %-4d  %-10s  %-6d  %s\n", i+1, formatMs(g.DurationMs), g.Stats.TotalPieces, g.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func printModeSummary(store *storage.Store) {
	all, err := store.GetAllModesStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	if len(all) == 0 {
		fmt.Println("No games recorded yet.")
		return
	}

	fmt.Printf("  %-10s  %-6s  %-10s  %-10s  %s\n", "Mode", "Games", "Best", "Best time", "Last played")
	fmt.Printf("  %-10s  %-6s  %-10s  %-10s  %s\n", "----", "-----", "----", "---------", "-----------")
	for _, info := range registry.List() {
		st, ok := all[info.ID]
		if !ok {
			continue
		}
		bestTime := "-"
		if st.BestTimeMs > 0 {
			bestTime = formatMs(st.BestTimeMs)
		}
		fmt.Printf("  %-10s  %-6d  %-10d  %-10s  %s\n", info.ID, st.GamesCount, st.HighScore, bestTime, st.LastPlayed.Format("2006-01-02 15:04"))
	}
}
