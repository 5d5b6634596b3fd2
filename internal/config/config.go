package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DefaultFileID is the Google Drive file holding the extracted SSE system log.
const DefaultFileID = "1LKSjPVavi-3aujfkxqxIRb0akhoGTEcZ"

// Config holds the core runtime configuration for the dashboard.
// Values come from defaults, an optional config file and APP_* environment
// variables (a .env file is loaded into the environment by main).
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Title      string `mapstructure:"title"`
	PlotlyURL  string `mapstructure:"plotly_url"`

	Source   SourceConfig   `mapstructure:"source"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig describes where the event log is downloaded from.
type SourceConfig struct {
	FileID string `mapstructure:"file_id"`
	// URL overrides the download URL derived from FileID.
	URL        string        `mapstructure:"url"`
	OutputPath string        `mapstructure:"output_path"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 means no timeout
	UserAgent  string        `mapstructure:"user_agent"`
}

// DatabaseConfig controls the optional PostgreSQL archive of each load.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	// RetentionDays is how long archived load runs are kept.
	RetentionDays int `mapstructure:"retention_days"`
}

// AuthConfig enables HTTP basic auth in front of the dashboard when both
// fields are set.
type AuthConfig struct {
	User         string `mapstructure:"user"`
	PasswordHash string `mapstructure:"password_hash"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the optional file at path and from the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "127.0.0.1:8050")
	v.SetDefault("title", "CCTV Error Analysis Dashboard")
	v.SetDefault("plotly_url", "https://cdn.plot.ly/plotly-2.35.2.min.js")

	v.SetDefault("source.file_id", DefaultFileID)
	v.SetDefault("source.url", "")
	v.SetDefault("source.output_path", "Extracted_SSESystemLog.csv")
	v.SetDefault("source.timeout", "0s")
	v.SetDefault("source.user_agent", "cctvinsight/1.0")

	v.SetDefault("database.url", "")
	v.SetDefault("database.retention_days", 30)

	v.SetDefault("auth.user", "")
	v.SetDefault("auth.password_hash", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}

	if c.Source.FileID == "" && c.Source.URL == "" {
		return fmt.Errorf("source.file_id or source.url is required")
	}
	if c.Source.OutputPath == "" {
		return fmt.Errorf("source.output_path is required")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}

	if dsn := strings.TrimSpace(c.Database.URL); dsn != "" {
		if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return fmt.Errorf("database.url must be a postgres:// or postgresql:// URL")
		}
		if c.Database.RetentionDays < 1 {
			return fmt.Errorf("database.retention_days must be at least 1")
		}
	}

	if (c.Auth.User == "") != (c.Auth.PasswordHash == "") {
		return fmt.Errorf("auth.user and auth.password_hash must be set together")
	}
	if c.Auth.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Auth.PasswordHash)); err != nil {
			return fmt.Errorf("auth.password_hash is not a bcrypt hash: %w", err)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return nil
}

// ArchiveEnabled reports whether load runs are persisted to PostgreSQL.
func (c *Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}

// AuthEnabled reports whether the dashboard sits behind basic auth.
func (c *Config) AuthEnabled() bool {
	return c.Auth.User != "" && c.Auth.PasswordHash != ""
}
