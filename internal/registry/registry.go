// Package registry holds the game modes known to the program. Mode
// packages register from init, and the CLI, the menus and the servers look
// them up by ID.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// ModeInfo is the listing data of a mode.
type ModeInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Factory builds a mode definition. It is called once at registration and
// again on every Get.
type Factory func() tetris.Mode

type entry struct {
	info ModeInfo
	make Factory
}

var (
	mu      sync.RWMutex
	entries = map[string]entry{}
)

// Register adds a mode. It panics on a duplicate ID or when the factory
// builds a mode with a different ID.
func Register(id string, f Factory) {
	m := f()
	if m.ID != id {
		panic(fmt.Sprintf("registry: mode %q reports id %q", id, m.ID))
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := entries[id]; dup {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}
	entries[id] = entry{
		info: ModeInfo{ID: m.ID, Title: m.Title, Description: m.Description},
		make: f,
	}
}

// List returns every mode sorted by ID.
func List() []ModeInfo {
	mu.RLock()
	out := make([]ModeInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.info)
	}
	mu.RUnlock()

	slices.SortFunc(out, func(a, b ModeInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Get builds the mode registered under id. Unknown IDs are an error.
func Get(id string) (tetris.Mode, error) {
	mu.RLock()
	e, ok := entries[id]
	mu.RUnlock()
	if !ok {
		return tetris.Mode{}, fmt.Errorf("registry: unknown mode %q", id)
	}
	return e.make(), nil
}

// Exists reports whether a mode is registered under id.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := entries[id]
	return ok
}
