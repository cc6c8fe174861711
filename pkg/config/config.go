// Package config loads keymark settings from a TOML file. All fields have
// working defaults, so the file is optional: commands run fine without one
// and flags override whatever the file sets.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mlenz/keymark/pkg/cache"
	"github.com/mlenz/keymark/pkg/errors"
)

// Config is the full tool configuration.
type Config struct {
	// SaveDir is the directory label files are written to.
	SaveDir string `toml:"save_dir"`

	// AutoSave controls whether navigating between images saves first.
	AutoSave bool `toml:"auto_save"`

	// HitTolerance is the keypoint grab radius in image pixels.
	HitTolerance float64 `toml:"hit_tolerance"`

	// ZoomStep is the zoom increment per zoom action.
	ZoomStep float64 `toml:"zoom_step"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig holds the read-only HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SaveDir:      "labels",
		AutoSave:     true,
		HitTolerance: 10,
		ZoomStep:     0.1,
		Cache: CacheConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "keymark"},
		},
		Server: ServerConfig{Addr: "localhost:8080"},
	}
}

// Path returns the default config file location, ~/.config/keymark/config.toml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keymark", "config.toml"), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for values that would break the tool.
func (c Config) Validate() error {
	if err := errors.ValidateDatasetPath(c.SaveDir); err != nil {
		return err
	}
	if c.HitTolerance <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "hit_tolerance must be positive, got %g", c.HitTolerance)
	}
	if c.ZoomStep <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom_step must be positive, got %g", c.ZoomStep)
	}
	switch c.Cache.Backend {
	case "file", "redis", "mongo", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// CacheOptions maps the cache section to backend options. The fallback dir
// is used for the file backend when none is configured.
func (c Config) CacheOptions(fallbackDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = fallbackDir
	}
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           dir,
		RedisAddr:     c.Cache.Redis.Addr,
		RedisPassword: c.Cache.Redis.Password,
		RedisDB:       c.Cache.Redis.DB,
		MongoURI:      c.Cache.Mongo.URI,
		MongoDatabase: c.Cache.Mongo.Database,
	}
}
