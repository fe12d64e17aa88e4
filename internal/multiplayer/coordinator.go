package multiplayer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout      time.Duration // how long a hosted lobby waits for a joiner
	TickRate          int           // match ticks per second
	CleanupPeriod     time.Duration // how often expired lobbies are closed
	Rules             tetris.Rules  // engine rules for both boards
	GarbageMultiplier int
	Logger            *log.Logger // nil logs through the default logger
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:      2 * time.Minute,
		TickRate:          60,
		CleanupPeriod:     30 * time.Second,
		Rules:             tetris.DefaultRules(),
		GarbageMultiplier: 1,
	}
}

// MatchResultSaver persists finished matches. The storage package implements
// it; the coordinator does not import storage.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData is a finished match as handed to a MatchResultSaver.
type MatchResultData struct {
	MatchID    string
	Mode       string
	Players    [2]MatchSideData
	Winner     int // 1 or 2, 0 on a draw
	EndReason  string
	Ticks      uint64
	DurationMs int64
}

// MatchSideData is one player's line in MatchResultData.
type MatchSideData struct {
	Session string
	Name    string
	Score   int
	Lines   int
	Sent    int
}

// Coordinator pairs sessions into battles, either through a hosted lobby and
// its join code or through the quick match queue, and runs each battle on its
// own goroutine.
//
// All lobby, queue and match bookkeeping belongs to a single goroutine started
// by Start. Sessions and matches talk to it through Send.
type Coordinator struct {
	config   CoordinatorConfig
	sessions *SessionRegistry
	logger   *log.Logger
	seed     func() int64
	now      func() time.Time

	saverMu sync.Mutex
	saver   MatchResultSaver

	inbox    chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once

	// owned by run
	lobbies *lobbyTable
	queue   []SessionHandle
	matches map[MatchID]*BattleMatch
	playing map[SessionID]*BattleMatch

	lobbyCount atomic.Int32
	matchCount atomic.Int32
}

// NewCoordinator creates a coordinator. Call Start before sending to it.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry) *Coordinator {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("battle")
	}
	return &Coordinator{
		config:   cfg,
		sessions: sessions,
		logger:   logger,
		seed:     func() int64 { return time.Now().UnixNano() },
		now:      time.Now,
		inbox:    make(chan CoordinatorMessage, 256),
		done:     make(chan struct{}),
		lobbies:  newLobbyTable(),
		matches:  make(map[MatchID]*BattleMatch),
		playing:  make(map[SessionID]*BattleMatch),
	}
}

// SetResultSaver sets where finished matches are recorded. nil disables it.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.saverMu.Lock()
	c.saver = saver
	c.saverMu.Unlock()
}

// SetSeedSource replaces the generator of per-match piece seeds. Call it
// before Start.
func (c *Coordinator) SetSeedSource(f func() int64) {
	c.seed = f
}

// Start runs the coordinator goroutine.
func (c *Coordinator) Start() {
	go c.run()
}

// Stop cancels every running match and ends the coordinator goroutine. Safe
// to call more than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Send posts a message to the coordinator. It is dropped after Stop.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

// LobbyCount returns the number of open lobbies.
func (c *Coordinator) LobbyCount() int { return int(c.lobbyCount.Load()) }

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int { return int(c.matchCount.Load()) }

func (c *Coordinator) run() {
	cleanup := time.NewTicker(c.config.CleanupPeriod)
	defer cleanup.Stop()

	for {
		select {
		case msg := <-c.inbox:
			c.handle(msg)
		case <-cleanup.C:
			c.expireLobbies()
		case <-c.done:
			for _, m := range c.matches {
				m.Stop()
			}
			return
		}
		c.lobbyCount.Store(int32(c.lobbies.len()))
		c.matchCount.Store(int32(len(c.matches)))
	}
}

func (c *Coordinator) handle(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.createLobby(m.SessionID)
	case JoinLobbyMsg:
		c.joinLobby(m.SessionID, m.Code)
	case QuickMatchMsg:
		c.quickMatch(m.SessionID)
	case LeaveMsg:
		c.leave(m.SessionID)
	case SessionDisconnectedMsg:
		c.leave(m.SessionID)
	case PlayerInputMsg:
		if match, ok := c.matches[m.MatchID]; ok {
			match.SendInput(m.Player, m.Commands)
		}
	case matchOverMsg:
		c.finishMatch(m.result)
	}
}

// busy returns why a session cannot start something new, or "".
func (c *Coordinator) busy(id SessionID) string {
	switch {
	case c.lobbies.hostedBy(id) != nil:
		return "Already in a lobby"
	case c.queued(id) >= 0:
		return "Already searching for a match"
	case c.playing[id] != nil:
		return "Already in a match"
	default:
		return ""
	}
}

func (c *Coordinator) queued(id SessionID) int {
	for i, s := range c.queue {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func (c *Coordinator) createLobby(id SessionID) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return
	}
	if reason := c.busy(id); reason != "" {
		session.Send(LobbyErrorEvent{Message: reason})
		return
	}

	lobby := c.lobbies.open(session, c.now())
	session.Send(LobbyCreatedEvent{Code: lobby.Code})
	c.logger.Debug("lobby opened", "code", lobby.Code, "host", session.Name())
}

func (c *Coordinator) joinLobby(id SessionID, code string) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return
	}
	if reason := c.busy(id); reason != "" {
		session.Send(LobbyErrorEvent{Message: reason})
		return
	}

	lobby := c.lobbies.find(code)
	switch {
	case lobby == nil:
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	case lobby.Host.ID() == id:
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	c.lobbies.close(lobby)
	c.startMatch(lobby.Code, lobby.Host, session)
}

func (c *Coordinator) quickMatch(id SessionID) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return
	}
	if reason := c.busy(id); reason != "" {
		session.Send(LobbyErrorEvent{Message: reason})
		return
	}

	// skip sessions that dropped while waiting
	for len(c.queue) > 0 {
		opponent := c.queue[0]
		c.queue = c.queue[1:]
		if _, connected := c.sessions.Get(opponent.ID()); connected {
			c.startMatch("", opponent, session)
			return
		}
	}

	c.queue = append(c.queue, session)
	session.Send(SearchingEvent{})
}

func (c *Coordinator) startMatch(code string, p1, p2 SessionHandle) {
	seed := c.seed()
	id := MatchID(fmt.Sprintf("m-%d-%s", c.now().UnixNano(), p1.ID()))
	if code != "" {
		id = MatchID(fmt.Sprintf("m-%s-%d", code, c.now().UnixNano()))
	}

	match := NewBattleMatch(id, code, BattleConfig{
		Seed:              seed,
		Rules:             c.config.Rules,
		GarbageMultiplier: c.config.GarbageMultiplier,
	}, p1, p2, c.config.TickRate)

	c.matches[id] = match
	c.playing[p1.ID()] = match
	c.playing[p2.ID()] = match

	for _, side := range []PlayerID{Player1, Player2} {
		s, opp := match.Player(side), match.Player(side.Opponent())
		s.Send(LobbyJoinedEvent{Code: code, Side: side, OpponentID: opp.ID(), OpponentName: opp.Name()})
		s.Send(MatchStartedEvent{MatchID: id, Side: side, Code: code, Seed: seed})
	}
	c.logger.Info("match started", "match", id, "p1", p1.Name(), "p2", p2.Name(), "seed", seed)

	go func() {
		c.Send(matchOverMsg{result: match.Run()})
	}()
}

func (c *Coordinator) finishMatch(r MatchResult) {
	match, ok := c.matches[r.MatchID]
	if !ok {
		return
	}
	delete(c.matches, r.MatchID)
	for _, p := range r.Players {
		delete(c.playing, p.Session)
	}

	evt := r.EndedEvent()
	match.Player(Player1).Send(evt)
	match.Player(Player2).Send(evt)
	c.logger.Info("match ended", "match", r.MatchID, "reason", r.Reason, "winner", r.Winner, "ticks", r.Ticks)

	if r.Reason != MatchEndReasonCancelled {
		c.save(r)
	}
}

// save records the result off the coordinator goroutine.
func (c *Coordinator) save(r MatchResult) {
	c.saverMu.Lock()
	saver := c.saver
	c.saverMu.Unlock()
	if saver == nil {
		return
	}

	data := MatchResultData{
		MatchID:    string(r.MatchID),
		Mode:       BattleModeID,
		Winner:     int(r.Winner),
		EndReason:  string(r.Reason),
		Ticks:      r.Ticks,
		DurationMs: r.Duration.Milliseconds(),
	}
	for i, p := range r.Players {
		data.Players[i] = MatchSideData{
			Session: string(p.Session),
			Name:    p.Name,
			Score:   p.Score,
			Lines:   p.Lines,
			Sent:    p.Sent,
		}
	}
	go func() {
		if err := saver.SaveMatchResult(data); err != nil {
			c.logger.Warn("failed to save match result", "match", data.MatchID, "error", err)
		}
	}()
}

// leave removes a session from its lobby, the queue, or its match.
func (c *Coordinator) leave(id SessionID) {
	if lobby := c.lobbies.hostedBy(id); lobby != nil {
		c.lobbies.close(lobby)
	}
	if i := c.queued(id); i >= 0 {
		c.queue = append(c.queue[:i], c.queue[i+1:]...)
	}
	if match := c.playing[id]; match != nil {
		match.Leave(id)
	}
}

func (c *Coordinator) expireLobbies() {
	for _, lobby := range c.lobbies.expire(c.now().Add(-c.config.LobbyTimeout)) {
		lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
		c.logger.Debug("lobby expired", "code", lobby.Code)
	}
}
