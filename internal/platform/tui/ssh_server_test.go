package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerName(t *testing.T) {
	tests := []struct {
		user string
		want string
	}{
		{"alice", "alice"},
		{"  bob  ", "bob"},
		{"eve\x1b[31m", "eve[31m"},
		{"with space", "withspace"},
		{"", "player"},
		{"\t\n", "player"},
		{"averyveryverylongusername", "averyveryverylon"},
		{"ñandú", "ñandú"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, playerName(tt.user), "user %q", tt.user)
	}
}

func TestResolveHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_key")
	got, err := resolveHostKey(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.DirExists(t, filepath.Dir(path))
}
