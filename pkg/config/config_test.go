package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auroramap.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, layout.DefaultConfig(), cfg.Layout)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
	assert.Equal(t, 0.1, cfg.Viewport.MinScale)
	assert.Equal(t, 5.0, cfg.Viewport.MaxScale)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[source]
save = "/saves/AuroraDB.db"
game = 3
race = 623

[layout]
iterations = 80
repulsion = 1500.0

[render]
formats = ["svg", "png"]
legend = true

[cache]
backend = "redis"
namespace = "auroramap:"

[cache.redis]
addr = "localhost:6379"
db = 2

[server]
addr = ":9090"
read_timeout = "5s"

[watch]
enabled = true
debounce = "250ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "/saves/AuroraDB.db", cfg.Source.Save)
	assert.Equal(t, int64(3), cfg.Source.Game)
	assert.Equal(t, int64(623), cfg.Source.Race)
	assert.Equal(t, 80, cfg.Layout.Iterations)
	assert.Equal(t, 1500.0, cfg.Layout.Repulsion)
	assert.Equal(t, layout.DefaultBaseRadius, cfg.Layout.BaseRadius, "unset keys keep defaults")
	assert.Equal(t, []string{"svg", "png"}, cfg.Render.Formats)
	assert.True(t, cfg.Render.Legend)
	assert.True(t, cfg.Render.Labels)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadEnv(t *testing.T) {
	path := writeConfig(t, "[layout]\nsectors = 12\n")
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Layout.Sectors)
}

func TestLoadWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("[layout]\nsectors = 6\n"), 0644))
	t.Chdir(dir)
	t.Setenv(EnvPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Layout.Sectors)
	assert.Equal(t, DefaultFile, cfg.Path)
}

func TestLoadNoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, Default().Layout, cfg.Layout)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
		msg  string
	}{
		{"syntax", "[layout\n", errors.ErrCodeInvalidConfig, ""},
		{"unknown key", "[layout]\nspacing = 3\n", errors.ErrCodeInvalidConfig, "unknown keys"},
		{"negative radius", "[layout]\nbase_radius = -1.0\n", errors.ErrCodeInvalidConfig, "layout.base_radius must be greater than 0"},
		{"zero iterations", "[layout]\niterations = 0\n", errors.ErrCodeInvalidConfig, "layout.iterations must be at least 1"},
		{"zero repulsion", "[layout]\nrepulsion = 0.0\n", errors.ErrCodeInvalidConfig, "layout.repulsion must be greater than 0"},
		{"zero threshold", "[layout]\nthreshold = 0.0\n", errors.ErrCodeInvalidConfig, "layout.threshold must be greater than 0"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig, "cache.backend must be one of: file, redis, none"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig, "cache.redis.addr is required"},
		{"zoom bounds", "[viewport]\nmin_scale = 2.0\nmax_scale = 1.0\n", errors.ErrCodeInvalidConfig, "viewport.max_scale must be greater than min_scale"},
		{"bad format", "[render]\nformats = [\"gif\"]\n", errors.ErrCodeInvalidConfig, "render.formats[0]"},
		{"two sources", "[source]\nsave = \"a.db\"\ndataset = \"a.json\"\n", errors.ErrCodeInvalidConfig, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "code = %v", errors.GetCode(err))
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Source.Race = 7
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	loaded, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.Source.Race)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.Watch, loaded.Watch)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "saves/a.db"), expandHome("~/saves/a.db"))
	assert.Equal(t, "/abs/a.db", expandHome("/abs/a.db"))
}
