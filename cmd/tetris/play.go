package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/audio"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/modes"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

var (
	flagDifficulty string
	flagLevel      int
	flagMute       bool
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode directly",
	Long: `Start a game in the given mode, skipping the menu.

Modes: classic (default), sprint, marathon, ultra, master.
Run 'tetris modes' for the full list.

Examples:
  tetris play
  tetris play sprint
  tetris play --difficulty hard
  tetris play marathon --level 10 --seed 42`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset (easy|normal|hard|fixed)")
	playCmd.Flags().IntVar(&flagLevel, "level", 0, "Starting level (overrides the preset)")
	playCmd.Flags().BoolVar(&flagMute, "mute", false, "Disable sound")
}

func runPlay(cmd *cobra.Command, args []string) {
	modeID := modes.Classic
	if len(args) > 0 {
		modeID = args[0]
	}

	if !registry.Exists(modeID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", modeID)
		fmt.Fprintln(os.Stderr, "Run 'tetris modes' to see available modes.")
		os.Exit(1)
	}

	cfg := loadConfig()
	if flagDifficulty != "" {
		preset, err := config.ParseDifficulty(flagDifficulty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		config.ApplyTetrisPreset(&cfg, preset)
	}
	if flagLevel > 0 {
		config.SetStartLevel(&cfg, flagLevel)
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	sound := audio.NewPlayer(cfg.Audio.Enabled && !flagMute, cfg.Audio.Volume)
	defer sound.Close()

	width, height := terminalSize()
	model, err := tui.NewGameApp(tui.AppOptions{
		Config:   cfg,
		Store:    store,
		Sound:    sound,
		TickRate: flagFPS,
		Seed:     flagSeed,
		Width:    width,
		Height:   height,
	}, modeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(model); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}
