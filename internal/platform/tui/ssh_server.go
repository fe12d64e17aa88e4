package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-tetris/internal/audio"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// SSHServerConfig configures the SSH front end.
type SSHServerConfig struct {
	Address     string        // host:port to listen on
	HostKeyPath string        // generated at ~/.tetris/host_key when empty
	IdleTimeout time.Duration // idle connections are closed after this
	TickRate    int           // frames per second of each session's UI
	MaxSessions int           // concurrent players, 0 for no limit
}

// DefaultSSHServerConfig returns the settings used by `tetris serve`.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		MaxSessions: 64,
	}
}

// maxNameLen bounds player names shown in lobbies and stored with battles.
const maxNameLen = 16

// SSHServer serves the game over SSH. Each connection runs its own AppModel;
// all of them share one Store and one battle Coordinator.
type SSHServer struct {
	config      SSHServerConfig
	game        config.TetrisConfig
	server      *ssh.Server
	store       *storage.Store
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
	logger      *log.Logger
}

// NewSSHServer builds the server without starting it. store may be nil, in
// which case nothing is persisted and battles are not recorded.
func NewSSHServer(cfg SSHServerConfig, game config.TetrisConfig, store *storage.Store) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tetris-ssh",
	})

	hostKey, err := resolveHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	sessions := multiplayer.NewSessionRegistry()
	coordinator := multiplayer.NewCoordinator(multiplayer.CoordinatorConfig{
		LobbyTimeout:      time.Duration(game.Battle.LobbyTimeout) * time.Second,
		TickRate:          game.Battle.TickRate,
		CleanupPeriod:     30 * time.Second,
		Rules:             game.Rules(),
		GarbageMultiplier: game.Battle.GarbageMultiplier,
		Logger:            logger.WithPrefix("tetris-battle"),
	}, sessions)
	if store != nil {
		coordinator.SetResultSaver(store)
	}

	s := &SSHServer{
		config:      cfg,
		game:        game,
		store:       store,
		sessions:    sessions,
		coordinator: coordinator,
		logger:      logger,
	}

	// Middleware runs last to first: log, admit, require a PTY, then play.
	s.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKey),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.newSession),
			activeterm.Middleware(),
			s.admit,
			s.logSessions,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	return s, nil
}

// resolveHostKey returns where the host key lives, creating its directory.
// wish generates the key on first start.
func resolveHostKey(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".tetris", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

// playerName turns an SSH user into a display name: printable runes only,
// at most maxNameLen of them, "player" when nothing is left.
func playerName(user string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(user) {
		if n == maxNameLen {
			break
		}
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			b.WriteRune(r)
			n++
		}
	}
	if b.Len() == 0 {
		return "player"
	}
	return b.String()
}

// newSession registers the connection with the battle coordinator and
// builds its UI.
func (s *SSHServer) newSession(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	name := playerName(sess.User())

	id := multiplayer.SessionID(name + "-" + uuid.NewString()[:8])
	handle := multiplayer.NewChannelSession(id, name, 256)
	s.sessions.Register(handle)

	go func() {
		<-sess.Context().Done()
		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
		s.sessions.Unregister(id)
		handle.Close()
	}()

	model := NewAppModel(AppOptions{
		Config:      s.game,
		Store:       s.store,
		Sound:       audio.Silent(), // sound never crosses the wire
		TickRate:    s.config.TickRate,
		Width:       pty.Window.Width,
		Height:      pty.Window.Height,
		Coordinator: s.coordinator,
		Session:     handle,
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// admit turns connections away once MaxSessions players are on.
func (s *SSHServer) admit(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if limit := s.config.MaxSessions; limit > 0 && s.sessions.Count() >= limit {
			s.logger.Warn("server full", "user", sess.User(), "sessions", limit)
			wish.Fatalln(sess, "The server is full, try again later.")
			return
		}
		next(sess)
	}
}

func (s *SSHServer) logSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		remote := sess.RemoteAddr().String()
		s.logger.Info("session started", "user", sess.User(), "remote", remote)
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", remote, "duration", time.Since(start).Round(time.Second))
	}
}

// ListenAndServe starts the coordinator and serves until Shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "max_sessions", s.config.MaxSessions)
	s.coordinator.Start()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes the listener and open connections, then cancels every
// running match.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down SSH server")
	err := s.server.Shutdown(ctx)
	s.coordinator.Stop()
	return err
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Coordinator returns the coordinator shared by all sessions.
func (s *SSHServer) Coordinator() *multiplayer.Coordinator {
	return s.coordinator
}
