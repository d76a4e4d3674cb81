package poolcfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/poolkit/poolcfg"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	const doc = `
blocks_per_page: 256
pad_bytes: 4
alignment: 8
debug: true
exceptions: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := poolcfg.Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint(256), cfg.BlocksPerPage)
	assert.Equal(t, uint(4), cfg.PadBytes)
	assert.Equal(t, uint(8), cfg.Alignment)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Exceptions)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := poolcfg.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSettingsOpensLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "pool.log")
	cfg := poolcfg.Default()
	cfg.LogFile = logPath

	settings, err := cfg.Settings()
	require.NoError(t, err)
	require.NotNil(t, settings.LogSink)
	assert.True(t, settings.OwnsSink)

	if c, ok := settings.LogSink.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	_, statErr := os.Stat(logPath)
	assert.NoError(t, statErr)
}
