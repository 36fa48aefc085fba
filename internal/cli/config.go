package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/slicegrid/slicegrid/pkg/resolve"
)

// Cache backends selectable via config.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Config holds user defaults loaded from the TOML config file. Flags
// always override config values.
//
// Example ~/.config/slicegrid/config.toml:
//
//	view = "output"
//	width = 1920
//	height = 1080
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
type Config struct {
	// View is the default view mode for resolve/inspect.
	View string `toml:"view"`

	// Width and Height are the default target resolution. Zero means use
	// the descriptor's declared size or the inferred internal resolution.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`    // "file" (default), "redis", "none"
	RedisAddr string `toml:"redis_addr"` // host:port, for the redis backend
	Dir       string `toml:"dir"`        // override for the file backend directory
}

// DefaultConfig returns the built-in defaults used when no config file
// exists.
func DefaultConfig() *Config {
	return &Config{
		View: string(resolve.DefaultView),
		Cache: CacheConfig{
			Backend:   cacheBackendFile,
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadConfig reads the config file, merging it over the defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", cacheBackendFile, cacheBackendRedis, cacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend: %q (must be file, redis, or none)", c.Cache.Backend)
	}
	if c.View != "" {
		if err := resolve.ValidateView(resolve.ViewMode(c.View)); err != nil {
			return err
		}
	}
	return nil
}

// configPath returns the config file location using the XDG standard
// (~/.config/slicegrid/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
