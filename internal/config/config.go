// Package config handles configuration loading for idxref.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Reconcile ReconcileConfig `mapstructure:"reconcile" yaml:"reconcile"`
	Yahoo     YahooConfig     `mapstructure:"yahoo"     yaml:"yahoo"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"` // Postgres DSN; empty = CSV-only run
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"` // directory for CSV snapshots and failure reports
}

// ScrapeConfig holds IDX fetch settings.
type ScrapeConfig struct {
	Proxy           string `mapstructure:"proxy"             yaml:"proxy"`             // forward proxy, "user:pass@host:port"
	TimeoutSec      int    `mapstructure:"timeout_sec"       yaml:"timeout_sec"`
	RateLimit       int    `mapstructure:"rate_limit"        yaml:"rate_limit"`        // requests per rate window
	RateWindowSec   int    `mapstructure:"rate_window_sec"   yaml:"rate_window_sec"`
	MaxAttempts     int    `mapstructure:"max_attempts"      yaml:"max_attempts"`      // per-item retry budget
	ItemDelayMillis int    `mapstructure:"item_delay_millis" yaml:"item_delay_millis"` // courtesy delay between items
}

// ReconcileConfig holds symbol reconciliation settings.
type ReconcileConfig struct {
	DriftThreshold int    `mapstructure:"drift_threshold" yaml:"drift_threshold"` // fuzz ratio below which a name counts as drifted
	BypassFile     string `mapstructure:"bypass_file"     yaml:"bypass_file"`     // YAML file listing symbols exempt from drift checks
}

// YahooConfig holds Yahoo Finance enrichment settings.
type YahooConfig struct {
	Enabled     bool `mapstructure:"enabled"     yaml:"enabled"`
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"` // bounded fan-out for enrichment calls
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
	File  string `mapstructure:"file"  yaml:"file"`  // log file path; empty = console only
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.idxref/config.yaml (home directory)
//  3. /etc/idxref/config.yaml (system)
//
// Environment variables override config file values.
// Format: IDXREF_<SECTION>_<KEY>, e.g., IDXREF_STORE_DATABASE_URL
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".idxref"))
	v.AddConfigPath("/etc/idxref")

	v.SetEnvPrefix("IDXREF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("IDXREF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.snapshot_dir", "./data")

	// IDX tolerates roughly 2 requests per 5 seconds before throttling.
	v.SetDefault("scrape.timeout_sec", 30)
	v.SetDefault("scrape.rate_limit", 2)
	v.SetDefault("scrape.rate_window_sec", 5)
	v.SetDefault("scrape.max_attempts", 3)
	v.SetDefault("scrape.item_delay_millis", 1500)

	v.SetDefault("reconcile.drift_threshold", 65)
	v.SetDefault("reconcile.bypass_file", "./config/bypass-symbols.yaml")

	v.SetDefault("yahoo.enabled", true)
	v.SetDefault("yahoo.concurrency", 4)

	v.SetDefault("logging.level", "info")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// BypassSymbols loads the drift-check bypass list from the configured YAML
// file. A missing file yields an empty set, not an error: the bypass list
// is an operator convenience.
func (c *Config) BypassSymbols() (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if c.Reconcile.BypassFile == "" {
		return set, nil
	}
	data, err := os.ReadFile(c.Reconcile.BypassFile)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("read bypass file: %w", err)
	}

	var doc struct {
		Symbols []string `yaml:"symbols"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse bypass file %s: %w", c.Reconcile.BypassFile, err)
	}
	for _, s := range doc.Symbols {
		s = strings.TrimSpace(s)
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set, nil
}
