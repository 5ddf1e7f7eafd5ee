// Package config loads forge settings from defaults, an optional forge.yaml,
// FORGE_* environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved configuration.
type Config struct {
	DataDir      string       `mapstructure:"data_dir"`
	TemplatesDir string       `mapstructure:"templates_dir"`
	Store        StoreConfig  `mapstructure:"store"`
	Backups      BackupConfig `mapstructure:"backups"`
	Mirror       MirrorConfig `mapstructure:"mirror"`
	Server       ServerConfig `mapstructure:"server"`
	Log          LogConfig    `mapstructure:"log"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // json, sqlite or memory
	Key     string `mapstructure:"key"`
}

type BackupConfig struct {
	Max int `mapstructure:"max"` // 0 keeps every backup
}

type MirrorConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Mode      string        `mapstructure:"mode"` // http or dir
	Endpoint  string        `mapstructure:"endpoint"`
	Path      string        `mapstructure:"path"`
	Root      string        `mapstructure:"root"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// New returns a viper instance with every default set and FORGE_* env
// variables bound. Callers may bind flags on it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("data_dir", ".forge")
	v.SetDefault("templates_dir", "")
	v.SetDefault("store.backend", "json")
	v.SetDefault("store.key", "forge.project")
	v.SetDefault("backups.max", 0)
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.mode", "http")
	v.SetDefault("mirror.endpoint", "http://localhost:3456")
	v.SetDefault("mirror.path", "/save-file")
	v.SetDefault("mirror.root", "")
	v.SetDefault("mirror.queue_size", 64)
	v.SetDefault("mirror.timeout", 10*time.Second)
	v.SetDefault("server.addr", ":8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or ./forge.yaml when empty and present) into v and
// returns the validated result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("forge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine; a missing explicit file is not
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "json", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid store.backend %q: want json, sqlite or memory", c.Store.Backend)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store.key cannot be empty")
	}
	if c.Backups.Max < 0 {
		return fmt.Errorf("backups.max cannot be negative")
	}
	switch c.Mirror.Mode {
	case "http", "dir":
	default:
		return fmt.Errorf("invalid mirror.mode %q: want http or dir", c.Mirror.Mode)
	}
	if c.Mirror.Enabled && c.Mirror.Mode == "dir" && c.Mirror.Root == "" {
		return fmt.Errorf("mirror.root is required when mirror.mode is dir")
	}
	if c.Mirror.QueueSize <= 0 {
		return fmt.Errorf("mirror.queue_size must be positive")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: want text or json", c.Log.Format)
	}
	return nil
}

// StorePath is the directory the key-value backend writes into.
func (c *Config) StorePath() string {
	return filepath.Clean(c.DataDir)
}

// ParseLevel maps a level name such as "debug" or "WARN" to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", name, err)
	}
	return level, nil
}

// NewLogger builds the process logger.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
