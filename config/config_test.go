package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigWritesDefaults(t *testing.T) {
	t.Parallel()
	home := t.TempDir()

	cfg := GetConfig(home)
	assert.Equal(t, home, cfg.RootDir)
	assert.FileExists(t, filepath.Join(home, "config", "config.toml"))
	assert.DirExists(t, filepath.Join(home, "data"))
	assert.Equal(t, filepath.Join(home, "config", "genesis.json"), cfg.GenesisFile())
	assert.NoError(t, cfg.ValidateBasic())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	home := t.TempDir()

	cfg := DefaultConfig()
	cfg.Moniker = "grant-test"
	cfg.KeepLastStates = 7
	cfg.DBBackend = "memdb"
	cfg.APICorsAllowedOrigins = []string{"https://a.example", "https://b.example"}
	cfg.Consensus.TimeoutCommit = 3 * time.Second

	EnsureRoot(home)
	WriteConfigFile(filepath.Join(home, "config", "config.toml"), cfg)

	loaded, err := LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "grant-test", loaded.Moniker)
	assert.Equal(t, int64(7), loaded.KeepLastStates)
	assert.Equal(t, "memdb", loaded.DBBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, loaded.APICorsAllowedOrigins)
	assert.Equal(t, 3*time.Second, loaded.Consensus.TimeoutCommit)
	assert.Equal(t, home, loaded.RootDir)
	assert.Equal(t, home, loaded.P2P.RootDir)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	EnsureRoot(home)

	path := filepath.Join(home, "config", "config.toml")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = []byte(strings.Replace(string(content), `db_backend = "goleveldb"`, `db_backend = "rocksdb"`, 1))
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err = LoadConfig(home)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.ValidateBasic())

	cfg = DefaultConfig()
	cfg.KeepLastStates = -1
	assert.Error(t, cfg.ValidateBasic())
}
