package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/stats"
)

var (
	flagRange string
	flagJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show play statistics",
	Long: `Analyze recorded games: totals, piece usage, line clears, personal
bests and daily trends.

Examples:
  tetris stats
  tetris stats --range week
  tetris stats --json`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagRange, "range", "all", "Trend range (day|week|month|all)")
	statsCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the report as JSON")
}

func runStats(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	games, err := store.Games("", 1000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving games: %v\n", err)
		os.Exit(1)
	}

	report := stats.Analyze(games, stats.ParseRange(flagRange), time.Now())

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if report.Basic.Games == 0 {
		fmt.Println("No games recorded yet.")
		return
	}

	b := report.Basic
	fmt.Println("Overview")
	fmt.Printf("  Games:       %d\n", b.Games)
	fmt.Printf("  Best score:  %d (avg %d)\n", b.BestScore, b.AverageScore)
	fmt.Printf("  Lines:       %d (avg %d)\n", b.TotalLines, b.AverageLines)
	fmt.Printf("  Max level:   %d\n", b.MaxLevel)
	fmt.Printf("  Play time:   %s (avg %s)\n", formatMs(b.TotalPlayMs), formatMs(b.AveragePlayMs))
	fmt.Println()

	c := report.Clears
	fmt.Println("Line clears")
	fmt.Printf("  Single %d  Double %d  Triple %d  Tetris %d  T-Spin %d  Perfect %d\n",
		c.Single, c.Double, c.Triple, c.Tetris, c.TSpin, c.PerfectClear)
	fmt.Println()

	if len(report.Pieces) > 0 {
		fmt.Println("Pieces")
		for _, p := range report.Pieces {
			fmt.Printf("  %s  %5d  %3d%%\n", p.Piece, p.Count, p.Percentage)
		}
		fmt.Println()
	}

	fmt.Println("Modes")
	for _, m := range report.Modes {
		line := fmt.Sprintf("  %-10s  %4d games  best %d  avg %d", m.Mode, m.Games, m.BestScore, m.AverageScore)
		if m.BestTimeMs > 0 {
			line += "  fastest " + formatMs(m.BestTimeMs)
		}
		fmt.Println(line)
	}
	fmt.Println()

	bests := report.Bests
	fmt.Println("Personal bests")
	fmt.Printf("  Score  %d  (%s)\n", bests.Score.Value, bests.Score.At.Format("2006-01-02"))
	fmt.Printf("  Lines  %d  (%s)\n", bests.Lines.Value, bests.Lines.At.Format("2006-01-02"))
	fmt.Printf("  Level  %d  (%s)\n", bests.Level.Value, bests.Level.At.Format("2006-01-02"))
	fmt.Printf("  Combo  %d  (%s)\n", bests.Combo.Value, bests.Combo.At.Format("2006-01-02"))
	fmt.Println()

	tr := report.Trends
	fmt.Printf("Trend (%s)\n", tr.Range)
	if len(tr.Points) == 0 {
		fmt.Println("  No games in range.")
		return
	}
	for _, p := range tr.Points {
		fmt.Printf("  %s  %3d games  avg score %d  avg lines %d\n", p.Date, p.Games, p.Score, p.Lines)
	}
	if len(tr.Points) > 1 {
		fmt.Printf("  Change: score %+d%%  lines %+d%%  level %+d%%\n", tr.Change.Score, tr.Change.Lines, tr.Change.Level)
	}
}
