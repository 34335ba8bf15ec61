// Package config loads auroramap settings from a TOML file.
//
// Settings are resolved in this order, later sources winning:
//
//  1. Defaults from [Default]
//  2. The config file: the explicit path, else $AURORAMAP_CONFIG, else
//     auroramap.toml in the working directory if it exists
//  3. Command-line flags, applied by the CLI after [Load] returns
//
// A minimal file:
//
//	[source]
//	save = "~/Aurora/AuroraDB.db"
//	game = 1
//	race = 623
//
//	[layout]
//	iterations = 80
//
//	[cache]
//	backend = "redis"
//	namespace = "auroramap:"
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/viewport"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "AURORAMAP_CONFIG"

// DefaultFile is looked up in the working directory.
const DefaultFile = "auroramap.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Layout   layout.Config  `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	Render   RenderConfig   `toml:"render"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Watch    WatchConfig    `toml:"watch"`

	// Path is the file the config was read from, or "".
	Path string `toml:"-"`
}

// SourceConfig selects the save and the viewing race.
type SourceConfig struct {
	Save    string `toml:"save"`
	Dataset string `toml:"dataset"`
	Game    int64  `toml:"game" validate:"gte=0"`
	Race    int64  `toml:"race" validate:"gte=0"`
	Root    int64  `toml:"root" validate:"gte=0"`
}

// ViewportConfig holds zoom limits and pointer tolerances.
type ViewportConfig struct {
	MinScale  float64 `toml:"min_scale" validate:"gt=0"`
	MaxScale  float64 `toml:"max_scale" validate:"gtfield=MinScale"`
	HitRadius float64 `toml:"hit_radius" validate:"gte=0"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Formats     []string `toml:"formats" validate:"dive,oneof=svg dot png pdf json"`
	Width       float64  `toml:"width" validate:"gte=0"`
	Height      float64  `toml:"height" validate:"gte=0"`
	Scale       float64  `toml:"scale" validate:"gt=0,lte=16"`
	Labels      bool     `toml:"labels"`
	Legend      bool     `toml:"legend"`
	Interactive bool     `toml:"interactive"`
	Seed        uint64   `toml:"seed"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string      `toml:"backend" validate:"oneof=file redis none"`
	Dir       string      `toml:"dir"`
	Namespace string      `toml:"namespace"`
	Redis     RedisConfig `toml:"redis"`
}

// RedisConfig locates the Redis server of the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" validate:"required_if=Enabled true"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0,lte=15"`

	// Enabled is derived from the backend choice.
	Enabled bool `toml:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gte=0"`
}

// WatchConfig configures reloading when the save changes.
type WatchConfig struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce" validate:"gte=0"`
	MaxWait  time.Duration `toml:"max_wait" validate:"gtefield=Debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultConfig(),
		Viewport: ViewportConfig{
			MinScale:  viewport.MinScale,
			MaxScale:  viewport.MaxScale,
			HitRadius: 6,
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
			Scale:   2,
			Labels:  true,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
		},
		Server: ServerConfig{
			Addr:            "localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
			MaxWait:  5 * time.Second,
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty
// path falls back to $AURORAMAP_CONFIG and then to auroramap.toml in the
// working directory; when none exists the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path == "" {
		return cfg, cfg.Validate()
	}

	path = expandHome(path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	cfg.Source.Save = expandHome(cfg.Source.Save)
	cfg.Source.Dataset = expandHome(cfg.Source.Dataset)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg, cfg.Validate()
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
