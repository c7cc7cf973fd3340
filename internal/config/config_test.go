package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("prefix: cfg\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{Prefix: "cfg", OutDir: "."}, cfg)
}

func TestLoadExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	data := "prefix: out\nout_dir: graphs\nfunc: ^main\\.\noverview: true\nverbose: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Prefix:   "out",
		OutDir:   "graphs",
		Func:     `^main\.`,
		Overview: true,
		Verbose:  true,
	}, cfg)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: [unterminated\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}
