package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWatcherMissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestNewConfigWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundgraph.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data]\ndir = \"data\"\n"), 0o644))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	require.NoError(t, cw.Stop())
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("fundgraph.toml~"))
	assert.True(t, isBackupFile("config.toml.back1"))
	assert.False(t, isBackupFile("fundgraph.toml"))
}
