package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/replay"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Manage recorded games",
	Long: `Every finished game is recorded. Replays can be listed, watched,
verified against their recorded state, and moved between machines as JSON.

A replay argument is either a file path or a stored replay ID.

Examples:
  tetris replay list
  tetris replay play 3f2a9c1e-...
  tetris replay verify run.json
  tetris replay export 3f2a9c1e-... run.json
  tetris replay import run.json`,
}

var replayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored replays",
	Args:  cobra.NoArgs,
	Run:   runReplayList,
}

var replayShowCmd = &cobra.Command{
	Use:   "show <replay>",
	Short: "Print replay metadata",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayShow,
}

var replayPlayCmd = &cobra.Command{
	Use:   "play <replay>",
	Short: "Watch a replay",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayPlay,
}

var replayVerifyCmd = &cobra.Command{
	Use:   "verify <replay>",
	Short: "Re-simulate a replay and check it against its recorded state",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayVerify,
}

var replayExportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write a stored replay to a JSON file",
	Args:  cobra.ExactArgs(2),
	Run:   runReplayExport,
}

var replayImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a replay from a JSON file",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayImport,
}

func init() {
	replayCmd.AddCommand(replayListCmd)
	replayCmd.AddCommand(replayShowCmd)
	replayCmd.AddCommand(replayPlayCmd)
	replayCmd.AddCommand(replayVerifyCmd)
	replayCmd.AddCommand(replayExportCmd)
	replayCmd.AddCommand(replayImportCmd)
}

// loadReplay reads arg as a file when it exists on disk, otherwise looks it
// up in the store.
func loadReplay(arg string) (*replay.Replay, error) {
	if _, err := os.Stat(arg); err == nil {
		return readReplayFile(arg)
	}

	store := mustOpenStore()
	defer store.Close()

	rep, err := store.Replay(arg)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no replay file or stored replay named %q", arg)
	}
	return rep, err
}

func readReplayFile(path string) (*replay.Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return replay.Decode(f)
}

func mustLoadReplay(arg string) *replay.Replay {
	rep, err := loadReplay(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return rep
}

func runReplayList(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	list, err := store.Replays(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving replays: %v\n", err)
		os.Exit(1)
	}

	if len(list) == 0 {
		fmt.Println("No replays recorded yet.")
		return
	}

	fmt.Printf("  %-36s  %-10s  %-8s  %-10s  %s\n", "ID", "Mode", "Score", "Time", "Date")
	fmt.Printf("  %-36s  %-10s  %-8s  %-10s  %s\n", "--", "----", "-----", "----", "----")
	for _, r := range list {
		fmt.Printf("  %-36s  %-10s  %-8d  %-10s  %s\n", r.ID, r.Mode, r.Score, formatMs(r.DurationMs), r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runReplayShow(cmd *cobra.Command, args []string) {
	rep := mustLoadReplay(args[0])

	fmt.Printf("ID:        %s\n", rep.ID)
	fmt.Printf("Mode:      %s\n", rep.GameMode)
	fmt.Printf("Seed:      %d\n", rep.Seed)
	fmt.Printf("Recorded:  %s\n", rep.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Score:     %d\n", rep.FinalScore)
	fmt.Printf("Duration:  %s\n", formatMs(rep.DurationMs))
	fmt.Printf("Frames:    %d\n", len(rep.Frames))
	fmt.Printf("Commands:  %d\n", rep.Commands())
	if rep.Statistics != nil {
		fmt.Printf("Pieces:    %d\n", rep.Statistics.TotalPieces)
		fmt.Printf("Lines:     %d\n", rep.Statistics.TotalLines)
	}
}

func runReplayPlay(cmd *cobra.Command, args []string) {
	rep := mustLoadReplay(args[0])
	cfg := loadConfig()

	width, height := terminalSize()
	model, err := tui.NewReplayApp(tui.AppOptions{
		Config:   cfg,
		TickRate: flagFPS,
		Width:    width,
		Height:   height,
	}, rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(model); err != nil {
		fmt.Fprintf(os.Stderr, "Error running replay: %v\n", err)
		os.Exit(1)
	}
}

func runReplayVerify(cmd *cobra.Command, args []string) {
	rep := mustLoadReplay(args[0])

	sum, err := replay.Play(rep, true)
	if err != nil {
		var desync *replay.DesyncError
		if errors.As(err, &desync) {
			fmt.Fprintf(os.Stderr, "DESYNC at frame %d: %s want %v, got %v\n", desync.Frame, desync.Field, desync.Want, desync.Got)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("OK: %d frames, score %d, %d lines, %s (%s)\n",
		len(rep.Frames), sum.Score, sum.Lines, formatMs(sum.DurationMs), sum.Reason)
}

func runReplayExport(cmd *cobra.Command, args []string) {
	id, path := args[0], args[1]

	store := mustOpenStore()
	defer store.Close()

	rep, err := store.Replay(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := replay.Encode(f, rep); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing replay: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %s to %s\n", id, path)
}

func runReplayImport(cmd *cobra.Command, args []string) {
	rep, err := readReplayFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	store := mustOpenStore()
	defer store.Close()
	store.SetMaxReplays(cfg.Replay.MaxSaved)

	id, err := store.SaveReplay(rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error storing replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported replay %s\n", id)
}
