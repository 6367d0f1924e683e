// Package config loads fiberlat configuration from TOML files.
//
// Configuration is optional everywhere: every field has a working default, so
// the CLI and service run without a config file at all. When a file is given,
// unknown values are rejected rather than silently corrected.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Config is the root configuration document.
type Config struct {
	Lattice LatticeConfig `toml:"lattice"`
	Tuning  TuningConfig  `toml:"tuning"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
}

// LatticeConfig selects the grid and deformation model.
type LatticeConfig struct {
	Mode    string  `toml:"mode"`
	Size    int     `toml:"size"`
	Spacing float64 `toml:"spacing"`
}

// TuningConfig overrides model constants. Zero values mean "use default".
type TuningConfig struct {
	MaxExpansion float64 `toml:"max_expansion"`
	MinSpacing   float64 `toml:"min_spacing"`
	DecayRate    float64 `toml:"decay_rate"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "none".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", "mongo".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Lattice: LatticeConfig{
			Mode:    lattice.ModeDecay,
			Size:    20,
			Spacing: 1.0,
		},
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: "file"},
		Store:  StoreConfig{Backend: "memory"},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file")
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects invalid settings. Values are never clamped here; a config
// that asks for something the solver cannot honor fails loudly.
func (c *Config) Validate() error {
	if err := lattice.ValidateMode(c.Lattice.Mode); err != nil {
		return err
	}
	latCfg := lattice.Config{Size: c.Lattice.Size, Spacing: c.Lattice.Spacing}
	if err := latCfg.Validate(); err != nil {
		return err
	}
	if c.Lattice.Mode == lattice.ModeClosedForm && c.Lattice.Size != 3 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"closedform mode requires size 3, got %d", c.Lattice.Size)
	}

	if c.Tuning.MinSpacing < 0 ||
		(c.Tuning.MinSpacing > 0 && c.Tuning.MinSpacing < solver.MinSpacingFloor) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"tuning.min_spacing must be at least %g, got %g",
			solver.MinSpacingFloor, c.Tuning.MinSpacing)
	}
	if c.Tuning.MaxExpansion < 0 || c.Tuning.DecayRate < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tuning values must be non-negative")
	}

	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}

	switch c.Store.Backend {
	case "", "memory", "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid store backend: %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}

	return nil
}

// LatticeSettings converts the lattice section to the core types.
func (c *Config) LatticeSettings() (lattice.Config, solver.Tuning) {
	tuning := solver.Tuning{
		MaxExpansion: c.Tuning.MaxExpansion,
		MinSpacing:   c.Tuning.MinSpacing,
		DecayRate:    c.Tuning.DecayRate,
	}
	tuning.SetDefaults()
	return lattice.Config{Size: c.Lattice.Size, Spacing: c.Lattice.Spacing}, tuning
}
