package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/audio"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive menu",
	Long: `Open the interactive menu to pick a mode, browse scores and replays,
or look at statistics and achievements.

This is the default command when running 'tetris' without arguments.`,
	Run: runMenu,
}

func runMenu(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	sound := audio.NewPlayer(cfg.Audio.Enabled, cfg.Audio.Volume)
	defer sound.Close()

	width, height := terminalSize()
	model := tui.NewAppModel(tui.AppOptions{
		Config:   cfg,
		Store:    store,
		Sound:    sound,
		TickRate: flagFPS,
		Seed:     flagSeed,
		Width:    width,
		Height:   height,
	})

	if err := tui.Run(model); err != nil {
		fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
		os.Exit(1)
	}
}
