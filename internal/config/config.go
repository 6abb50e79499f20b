// Package config provides YAML-based configuration loading for roadcall.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level roadcall configuration, loaded from
// roadcall.yaml.
type Config struct {
	Port       int          `yaml:"port"`
	UploadsDir string       `yaml:"uploads_dir"`
	Store      StoreConfig  `yaml:"store"`
	Backup     BackupConfig `yaml:"backup"`
	Notify     NotifyConfig `yaml:"notify"`
}

// StoreConfig selects and configures the dispatch store backend.
type StoreConfig struct {
	// Driver is "file" (JSON document), "sqlite" or "mysql".
	Driver string `yaml:"driver"`
	// DataFile is the JSON document path (file driver) or the SQLite
	// database path (sqlite driver).
	DataFile string `yaml:"data_file"`
	// StrictReads makes a corrupt datastore fatal instead of silently
	// falling back to empty collections. File driver only.
	StrictReads bool        `yaml:"strict_reads"`
	MySQL       MySQLConfig `yaml:"mysql"`
}

// MySQLConfig holds connection settings for the mysql driver.
type MySQLConfig struct {
	User     string `yaml:"user"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// BackupConfig schedules datastore snapshots. Empty schedule disables
// backups. File driver only.
type BackupConfig struct {
	// Schedule is a 5-field cron expression.
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir"`
	// Keep is how many snapshots to retain; older ones are pruned.
	Keep int `yaml:"keep"`
}

// NotifyConfig enables assignment notifications. Tokens come from the
// environment (ROADCALL_SLACK_BOT_TOKEN, ROADCALL_DISCORD_BOT_TOKEN), not
// from the config file.
type NotifyConfig struct {
	// Platform is "slack", "discord" or empty (disabled).
	Platform string `yaml:"platform"`
	Channel  string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.DataFile == "" {
		switch c.Store.Driver {
		case "sqlite":
			c.Store.DataFile = "roadcall.db"
		default:
			c.Store.DataFile = "roadcall.json"
		}
	}
	if c.Store.MySQL.User == "" {
		c.Store.MySQL.User = "root"
	}
	if c.Store.MySQL.Host == "" {
		c.Store.MySQL.Host = "127.0.0.1"
	}
	if c.Store.MySQL.Port == 0 {
		c.Store.MySQL.Port = 3306
	}
	if c.Store.MySQL.Database == "" {
		c.Store.MySQL.Database = "roadcall"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "backups"
	}
	if c.Backup.Keep == 0 {
		c.Backup.Keep = 10
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Store.Driver {
	case "file", "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not one of file, sqlite, mysql", c.Store.Driver))
	}
	switch c.Notify.Platform {
	case "", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("notify.platform %q is not one of slack, discord", c.Notify.Platform))
	}
	if c.Notify.Platform != "" && c.Notify.Channel == "" {
		errs = append(errs, "notify.channel is required when notify.platform is set")
	}
	if c.Backup.Schedule != "" && c.Store.Driver != "file" {
		errs = append(errs, "backup.schedule requires the file store driver")
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d is out of range", c.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
