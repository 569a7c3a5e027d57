// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads modreg configuration from an optional YAML file and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/modreg/internal/logging"
	"github.com/holomush/modreg/internal/module"
	"github.com/holomush/modreg/internal/xdg"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DatabaseURLEnv is consulted for the postgres DSN when store.dsn is unset.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the resolved modreg configuration.
type Config struct {
	Modules ModulesConfig `koanf:"modules"`
	Store   StoreConfig   `koanf:"store"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ModulesConfig selects where descriptors are discovered.
type ModulesConfig struct {
	Dirs    []string `koanf:"dirs"`
	Pattern string   `koanf:"pattern"`
}

// StoreConfig selects the installation store backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig configures the observability server. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var flagKeys = map[string]string{
	"dir":          "modules.dirs",
	"pattern":      "modules.pattern",
	"store-driver": "store.driver",
	"store-dsn":    "store.dsn",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"metrics-addr": "metrics.addr",
}

// Load builds the configuration. Precedence, lowest first: flag defaults,
// the YAML file, flags set on the command line. When path is empty the XDG
// config file is read if it exists; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load config file")
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "stat config file")
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Modules.Pattern == "" {
		c.Modules.Pattern = module.DefaultPattern
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Log.Format == "" {
		c.Log.Format = logging.FormatJSON
	}
	if c.Store.DSN != "" {
		return
	}
	switch c.Store.Driver {
	case DriverPostgres:
		c.Store.DSN = os.Getenv(DatabaseURLEnv)
	case DriverSQLite:
		c.Store.DSN = xdg.DatabasePath()
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	drivers := []string{DriverPostgres, DriverSQLite, DriverMemory}
	if !slices.Contains(drivers, c.Store.Driver) {
		return oops.Code("CONFIG_INVALID").
			With("driver", c.Store.Driver).
			Errorf("store.driver must be one of %s, got %q", strings.Join(drivers, ", "), c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSN == "" {
		return oops.Code("CONFIG_INVALID").Errorf("store.dsn or %s is required for the postgres driver", DatabaseURLEnv)
	}
	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").With("level", c.Log.Level).Wrapf(err, "log.level")
	}
	for _, dir := range c.Modules.Dirs {
		if strings.TrimSpace(dir) == "" {
			return oops.Code("CONFIG_INVALID").Errorf("modules.dirs must not contain empty entries")
		}
	}
	return nil
}

// LoggingOptions converts the log section for logging.Setup. Call Validate
// first; an invalid level falls back to info.
func (c *Config) LoggingOptions() logging.Options {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Options{Format: c.Log.Format, Level: level}
}

// DefaultMetricsAddr is the observability server address used by serve.
const DefaultMetricsAddr = "127.0.0.1:9100"

// RegisterFlags adds the configuration flags shared by every command.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSlice("dir", nil, "module search directory (repeatable)")
	fs.String("pattern", module.DefaultPattern, "descriptor file pattern relative to each search directory")
	fs.String("store-driver", DriverSQLite, "installation store (postgres, sqlite or memory)")
	fs.String("store-dsn", "", "store DSN (default: $DATABASE_URL for postgres, XDG data dir for sqlite)")
	fs.String("log-format", logging.FormatJSON, "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}
