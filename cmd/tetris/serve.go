package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/achievements"
	"github.com/vovakirdan/tui-tetris/internal/api"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
	flagMaxSessions int
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH game server and the HTTP API",
	Long: `Start an SSH server that lets users connect and play, including
online battles against each other, and an HTTP API exposing scores,
statistics, achievements, match history and replays.

Both servers share one database, so everyone sees the same leaderboard.
Pass an empty address to disable one of them.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.tetris/host_key

Environment:
  TETRIS_SSH_ADDR and TETRIS_HTTP_ADDR replace the flag defaults.

Examples:
  tetris serve                           # SSH on :23234, API on :8080
  tetris serve --ssh :2222 --http ""     # SSH only, on port 2222
  tetris serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP API address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", 64, "Maximum concurrent SSH players (0 = unlimited)")
}

func runServe(_ *cobra.Command, _ []string) {
	if flagSSHAddr == "" && flagHTTPAddr == "" {
		fmt.Fprintln(os.Stderr, "Error: both --ssh and --http are disabled")
		os.Exit(1)
	}

	cfg := loadConfig()
	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	var sshServer *tui.SSHServer
	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.TickRate = flagFPS
		sshCfg.MaxSessions = flagMaxSessions

		var err error
		sshServer, err = tui.NewSSHServer(sshCfg, cfg, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
			os.Exit(1)
		}
	}

	var httpServer *http.Server
	if flagHTTPAddr != "" {
		if store == nil {
			fmt.Fprintln(os.Stderr, "Error: the HTTP API needs a database")
			os.Exit(1)
		}
		httpLogger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tetris-http",
		})
		router := api.NewRouter(store, achievements.FromConfig(cfg.Achievements), httpLogger)
		httpServer = api.NewServer(flagHTTPAddr, router)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	if sshServer != nil {
		go func() {
			errCh <- sshServer.ListenAndServe()
		}()
		fmt.Printf("SSH server listening on %s\n", flagSSHAddr)
	}
	if httpServer != nil {
		go func() {
			logger.Info("starting HTTP API", "address", flagHTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}()
		fmt.Printf("HTTP API listening on %s\n", flagHTTPAddr)
	}
	fmt.Println("Press Ctrl+C to stop")

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sshServer != nil {
		if err := sshServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("SSH shutdown failed", "error", err)
		}
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
	}

	if serveErr != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", serveErr)
		os.Exit(1)
	}
}
