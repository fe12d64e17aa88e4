// tetris is a falling-block puzzle game for the terminal, playable locally or
// over SSH.
//
// Usage:
//
//	tetris                   - Start the menu
//	tetris play [mode]       - Play a mode directly (default: classic)
//	tetris modes             - List available modes
//	tetris scores [mode]     - Show high scores
//	tetris stats             - Show play statistics
//	tetris replay ...        - List, play, verify, export and import replays
//	tetris achievements      - Show achievement progress
//	tetris serve             - Start the SSH and HTTP servers
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 60)
//	--seed <value>   - Set RNG seed for reproducible gameplay
//	--db <path>      - Set database path (default: ~/.tetris/tetris.db)
//	--config <path>  - Use a custom config YAML
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Import modes to register them
	_ "github.com/vovakirdan/tui-tetris/internal/modes"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "tetris"})

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Tetris - Falling blocks in your terminal",
	Long: `A falling-block puzzle game for the terminal with several modes,
replays, statistics, achievements and online battles over SSH.

Available commands:
  play          - Play a mode directly
  menu          - Interactive menu (default)
  modes         - List available modes
  scores        - View high scores
  stats         - View play statistics
  replay        - Manage recorded games
  achievements  - View achievement progress
  battles       - View online battle history
  serve         - Start SSH and HTTP servers

Examples:
  tetris
  tetris play sprint
  tetris play --difficulty hard --level 5
  tetris replay list
  tetris serve --ssh :2222 --http :8080`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		applyEnv(cmd)
	},
	Run: runMenu,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.tetris/tetris.db", "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")

	// Add subcommands
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(battlesCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyEnv lets TETRIS_* variables stand in for flags the user did not set.
func applyEnv(cmd *cobra.Command) {
	override := func(flag, env string, dst *string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			return
		}
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	override("db", "TETRIS_DB", &flagDBPath)
	override("ssh", "TETRIS_SSH_ADDR", &flagSSHAddr)
	override("http", "TETRIS_HTTP_ADDR", &flagHTTPAddr)
}
