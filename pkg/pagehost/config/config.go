// Package config loads pagehost settings from an optional TOML file and
// PAGEHOST_* environment variables, on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/internal"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config holds all framework configuration. The environment variable for a
// setting is PAGEHOST_<SECTION>_<KEY>, e.g. PAGEHOST_NAVIGATION_SAME_VIEW.
type Config struct {
	Log        LogConfig        `toml:"log" split_words:"true"`
	Store      StoreConfig      `toml:"store" split_words:"true"`
	Navigation NavigationConfig `toml:"navigation" split_words:"true"`
	Lifecycle  LifecycleConfig  `toml:"lifecycle" split_words:"true"`
	Splash     SplashConfig     `toml:"splash" split_words:"true"`
	Locale     string           `toml:"locale" split_words:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level" split_words:"true"`
	Path  string `toml:"path" split_words:"true"` // Empty logs to stdout only
}

// StoreConfig selects the settings store.
type StoreConfig struct {
	Driver string `toml:"driver" split_words:"true"`
	Path   string `toml:"path" split_words:"true"` // SQLite database file
}

// NavigationConfig holds defaults for every navigation service.
type NavigationConfig struct {
	SameView  string `toml:"same_view" split_words:"true"` // ignore, reload or push
	CacheSize int    `toml:"cache_size" split_words:"true"`
}

// LifecycleConfig bounds the asynchronous application hooks.
type LifecycleConfig struct {
	StartTimeout time.Duration `toml:"start_timeout" split_words:"true"`
	StopTimeout  time.Duration `toml:"stop_timeout" split_words:"true"`
}

// SplashConfig describes the extended splash screen. An empty path
// disables it.
type SplashConfig struct {
	Path   string `toml:"path" split_words:"true"`
	Width  int    `toml:"width" split_words:"true"`
	Height int    `toml:"height" split_words:"true"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Navigation: NavigationConfig{
			SameView:  router.SameViewIgnore.String(),
			CacheSize: constants.DefaultCacheSize,
		},
		Lifecycle: LifecycleConfig{
			StartTimeout: constants.DefaultStartTimeout,
			StopTimeout:  constants.DefaultStopTimeout,
		},
		Splash: SplashConfig{
			Width:  640,
			Height: 480,
		},
		Locale: "en",
	}
}

// Load reads the TOML file at path, if any, then applies environment
// overrides and validates the result. Unknown keys in the file are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	if err := envconfig.Process(constants.EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, sqlite", c.Store.Driver))
	}
	if _, err := router.ParseSameViewPolicy(c.Navigation.SameView); err != nil {
		errs = append(errs, fmt.Errorf("navigation.same_view: %w", err))
	}
	if c.Navigation.CacheSize < 0 {
		errs = append(errs, errors.New("navigation.cache_size must not be negative"))
	}
	if c.Lifecycle.StartTimeout <= 0 {
		errs = append(errs, errors.New("lifecycle.start_timeout must be positive"))
	}
	if c.Lifecycle.StopTimeout <= 0 {
		errs = append(errs, errors.New("lifecycle.stop_timeout must be positive"))
	}
	if c.Splash.Path != "" && (c.Splash.Width <= 0 || c.Splash.Height <= 0) {
		errs = append(errs, errors.New("splash.width and splash.height must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() slog.Level {
	return internal.ParseLevel(c.Log.Level)
}

// SameViewPolicy parses Navigation.SameView. Validate has already rejected
// bad values, so an unparsable value reads as the default.
func (c *Config) SameViewPolicy() router.SameViewPolicy {
	p, _ := router.ParseSameViewPolicy(c.Navigation.SameView)
	return p
}
