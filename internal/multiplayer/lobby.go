package multiplayer

import (
	"crypto/rand"
	"strings"
	"time"
)

// codeAlphabet leaves out I, O, 0 and 1, which read alike in most terminal
// fonts. Its 32 letters divide 256, so byte-mod sampling stays uniform.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the number of characters in a join code.
const CodeLength = 6

// Lobby is a hosted game waiting for a second player.
type Lobby struct {
	Code      string
	Host      SessionHandle
	CreatedAt time.Time
}

// lobbyTable indexes open lobbies by code and by host. It is owned by the
// coordinator goroutine.
type lobbyTable struct {
	byCode map[string]*Lobby
	byHost map[SessionID]*Lobby
}

func newLobbyTable() *lobbyTable {
	return &lobbyTable{
		byCode: make(map[string]*Lobby),
		byHost: make(map[SessionID]*Lobby),
	}
}

func (t *lobbyTable) open(host SessionHandle, now time.Time) *Lobby {
	code := newJoinCode()
	for t.byCode[code] != nil {
		code = newJoinCode()
	}
	l := &Lobby{Code: code, Host: host, CreatedAt: now}
	t.byCode[code] = l
	t.byHost[host.ID()] = l
	return l
}

func (t *lobbyTable) find(code string) *Lobby {
	return t.byCode[NormalizeCode(code)]
}

func (t *lobbyTable) hostedBy(id SessionID) *Lobby {
	return t.byHost[id]
}

func (t *lobbyTable) close(l *Lobby) {
	delete(t.byCode, l.Code)
	delete(t.byHost, l.Host.ID())
}

// expire closes every lobby opened before cutoff and returns them.
func (t *lobbyTable) expire(cutoff time.Time) []*Lobby {
	var out []*Lobby
	for _, l := range t.byCode {
		if l.CreatedAt.Before(cutoff) {
			t.close(l)
			out = append(out, l)
		}
	}
	return out
}

func (t *lobbyTable) len() int { return len(t.byCode) }

// NormalizeCode upper-cases a typed join code and trims spaces.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCodeRune reports whether r can appear in a join code, ignoring case.
func ValidCodeRune(r rune) bool {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return strings.ContainsRune(codeAlphabet, r)
}

func newJoinCode() string {
	var b [CodeLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b[:])
}
