package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/project")
	assert.Equal(t, filepath.Join("/project", ".glossa"), p.Root)
	assert.Equal(t, filepath.Join("/project", ".glossa", "glossa.db"), p.DB)
	assert.Equal(t, filepath.Join("/project", ".glossa", "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join("/project", ".glossa", "run"), p.RunDir)
	assert.Equal(t, filepath.Join("/project", ".glossa", "run", "serve.pid"), p.PIDFile)
	assert.Equal(t, filepath.Join("/project", ".glossa", "run", "http.port"), p.PortFile)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(dir)

	// First call creates directories.
	require.NoError(t, p.EnsureDirs())
	for _, d := range []string{p.Root, p.RunDir} {
		info, err := os.Stat(d)
		require.NoError(t, err, "dir %s should exist", d)
		assert.True(t, info.IsDir())
	}

	// Second call is idempotent, no error.
	require.NoError(t, p.EnsureDirs())
}

func TestCleanEphemeral(t *testing.T) {
	p := NewPaths(t.TempDir())
	require.NoError(t, p.EnsureDirs())
	require.NoError(t, os.WriteFile(p.PIDFile, []byte("1"), 0644))
	require.NoError(t, os.WriteFile(p.PortFile, []byte("8080"), 0644))

	p.CleanEphemeral()

	_, err := os.Stat(p.PIDFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(p.PortFile)
	assert.True(t, os.IsNotExist(err))

	// Missing files are fine.
	p.CleanEphemeral()
}
