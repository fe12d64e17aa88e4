package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress",
	Args:  cobra.NoArgs,
	Run:   runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	defs := achievements.FromConfig(cfg.Achievements)

	store := mustOpenStore()
	defer store.Close()

	unlocked, err := store.Achievements()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving achievements: %v\n", err)
		os.Exit(1)
	}

	ids := make([]string, 0, len(unlocked))
	when := make(map[string]string, len(unlocked))
	for _, u := range unlocked {
		ids = append(ids, u.ID)
		when[u.ID] = u.UnlockedAt.Format("2006-01-02")
	}

	total := 0
	for _, d := range defs {
		total += d.Points
	}

	fmt.Printf("Achievements - %d/%d points\n", achievements.Points(defs, ids), total)
	fmt.Println()
	for _, d := range defs {
		mark, date := "[ ]", ""
		if at, ok := when[d.ID]; ok {
			mark, date = "[x]", at
		}
		fmt.Printf("  %s %-22s %3d  %-40s %s\n", mark, d.Title, d.Points, d.Description, date)
	}
}
