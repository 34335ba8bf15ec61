package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cachePathOutput runs "cache path" and returns what it printed.
func cachePathOutput(t *testing.T, c *CLI, args ...string) string {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "cache", "path"))
	require.NoError(t, root.Execute())
	return strings.TrimSpace(out.String())
}

func TestCachePathFollowsXDG(t *testing.T) {
	c, _ := setupCLI(t)
	xdg := filepath.Join(t.TempDir(), "xdg")
	t.Setenv("XDG_CACHE_HOME", xdg)

	assert.Equal(t, filepath.Join(xdg, appName), cachePathOutput(t, c))
}

func TestCachePathDefaultsUnderHome(t *testing.T) {
	c, _ := setupCLI(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	assert.Equal(t, filepath.Join(home, ".cache", appName), cachePathOutput(t, c))
}

func TestCachePathFromConfig(t *testing.T) {
	c, _ := setupCLI(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "ignored"))

	cfgFile := filepath.Join(t.TempDir(), "auroramap.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[cache]\ndir = \"~/maps/cache\"\n"), 0o644))

	assert.Equal(t, filepath.Join(home, "maps", "cache"), cachePathOutput(t, c, "--config", cfgFile))
}

func TestCacheClearSkipsRemoteBackends(t *testing.T) {
	c, _ := setupCLI(t)
	dir, err := c.cacheDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "entry.json")
	require.NoError(t, os.WriteFile(marker, []byte("{}"), 0o644))

	cfgFile := filepath.Join(t.TempDir(), "auroramap.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[cache]\nbackend = \"none\"\n"), 0o644))

	require.NoError(t, run(t, c, "--config", cfgFile, "cache", "clear"))
	assert.FileExists(t, marker)
}
