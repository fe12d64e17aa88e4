package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagPlayer    string
	flagLimit     int
	flagStandings bool
)

var battlesCmd = &cobra.Command{
	Use:   "battles",
	Short: "Show online battle history",
	Long: `List recent online battles recorded by 'tetris serve', or the
player standings.

Examples:
  tetris battles
  tetris battles --player alice
  tetris battles --standings`,
	Args: cobra.NoArgs,
	Run:  runBattles,
}

func init() {
	battlesCmd.Flags().StringVar(&flagPlayer, "player", "", "Only battles this player took part in")
	battlesCmd.Flags().IntVar(&flagLimit, "limit", 20, "How many rows to show")
	battlesCmd.Flags().BoolVar(&flagStandings, "standings", false, "Show wins and losses per player")
}

func runBattles(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	if flagStandings {
		standings, err := store.Standings(flagLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving standings: %v\n", err)
			os.Exit(1)
		}
		if len(standings) == 0 {
			fmt.Println("No battles recorded yet.")
			return
		}
		fmt.Printf("  %-4s  %-16s  %-6s  %-4s  %-4s  %-4s  %s\n", "Rank", "Player", "Played", "W", "L", "D", "Sent")
		for i, st := range standings {
			fmt.Printf("  %-4d  %-16s  %-6d  %-4d  %-4d  %-4d  %d\n", i+1, st.Name, st.Played, st.Wins, st.Losses, st.Draws, st.LinesSent)
		}
		return
	}

	battles, err := store.RecentBattles(flagPlayer, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving battles: %v\n", err)
		os.Exit(1)
	}
	if len(battles) == 0 {
		fmt.Println("No battles recorded yet.")
		return
	}

	if flagPlayer != "" {
		if st, err := store.StandingOf(flagPlayer); err == nil {
			fmt.Printf("%s: %d wins, %d losses, %d draws\n\n", st.Name, st.Wins, st.Losses, st.Draws)
		}
	}

	for _, b := range battles {
		p1, p2 := b.Players[0], b.Players[1]
		result := "draw"
		if w := b.WinnerName(); w != "" {
			result = w + " won"
		}
		fmt.Printf("  %s  %-12s %6d vs %-6d %-12s  %-10s %s (%s)\n",
			b.CreatedAt.Format("2006-01-02 15:04"),
			p1.Name, p1.Score, p2.Score, p2.Name,
			result, b.EndReason, formatMs(int(b.DurationMs)))
	}
}
