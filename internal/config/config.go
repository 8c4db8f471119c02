// Package config loads the application configuration from config.yaml and
// CATALOG_* environment variables and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bookmybike/catalog-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Assets AssetsConfig `yaml:"assets" mapstructure:"assets"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// IngestConfig configures extraction behavior.
type IngestConfig struct {
	ExtraDomains []string `yaml:"extra_domains" mapstructure:"extra_domains"`
	DefaultMode  string   `yaml:"default_mode" mapstructure:"default_mode"`
}

// AssetsConfig configures media downloading.
type AssetsConfig struct {
	MediaRoot     string `yaml:"media_root" mapstructure:"media_root"`
	MaxFileSizeMB int    `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec    int    `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "catalog.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("ingest.extra_domains", []string{})
	v.SetDefault("ingest.default_mode", "ITEM")
	v.SetDefault("assets.media_root", "media")
	v.SetDefault("assets.max_file_size_mb", 10)
	v.SetDefault("assets.concurrency", 5)
	v.SetDefault("assets.rate_per_sec", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command depends on. Mode is "sync" for
// store-backed commands, "serve" for the HTTP API, "parse" for extraction
// without storage.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}
	checkAssets := func() {
		if c.Assets.MaxFileSizeMB < 1 {
			problems = append(problems, "assets.max_file_size_mb must be >= 1")
		}
		if c.Assets.Concurrency < 1 || c.Assets.Concurrency > 20 {
			problems = append(problems, "assets.concurrency must be between 1 and 20")
		}
	}

	switch mode {
	case "parse":
		// Extraction needs no storage.
	case "sync":
		checkStore()
		checkAssets()
	case "serve":
		checkStore()
		checkAssets()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
