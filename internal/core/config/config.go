// Package config handles configuration loading and validation for mtqa.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// Attachment backends.
const (
	BackendFilesystem = "filesystem"
	BackendAzure      = "azure"
)

// Config holds the application configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Queue       QueueConfig       `yaml:"queue"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Annotator   AnnotatorConfig   `yaml:"annotator"`
	Render      RenderConfig      `yaml:"render"`
	DataDir     string            `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// QueueConfig controls how many unannotated sentences are loaded at once.
type QueueConfig struct {
	PageSize int `yaml:"page_size"`
}

// AttachmentsConfig selects where voice notes are uploaded.
type AttachmentsConfig struct {
	Backend   string `yaml:"backend"`   // filesystem or azure
	Dir       string `yaml:"dir"`       // filesystem backend root, relative to the data dir
	Container string `yaml:"container"` // azure container name
	// ConnectionStringEnv names the environment variable holding the
	// azure storage connection string.
	ConnectionStringEnv string `yaml:"connection_string_env"`
}

// AnnotatorConfig holds defaults for interactive annotation.
type AnnotatorConfig struct {
	DefaultErrorType annotation.ErrorType `yaml:"default_error_type"`
	Name             string               `yaml:"name"`
}

// RenderConfig controls terminal output.
type RenderConfig struct {
	Theme string `yaml:"theme"` // glamour style: dark, light, notty, ...
	Width int    `yaml:"width"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Queue: QueueConfig{PageSize: 20},
		Attachments: AttachmentsConfig{
			Backend:             BackendFilesystem,
			Dir:                 "voice",
			Container:           "voice-notes",
			ConnectionStringEnv: "MTQA_AZURE_STORAGE_CONNECTION_STRING",
		},
		Annotator: AnnotatorConfig{DefaultErrorType: annotation.DefaultErrorType},
		Render:    RenderConfig{Theme: "dark", Width: 100},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Queue.PageSize == 0 {
		c.Queue.PageSize = defaults.Queue.PageSize
	}
	if c.Attachments.Backend == "" {
		c.Attachments.Backend = defaults.Attachments.Backend
	}
	if c.Attachments.Dir == "" {
		c.Attachments.Dir = defaults.Attachments.Dir
	}
	if c.Attachments.Container == "" {
		c.Attachments.Container = defaults.Attachments.Container
	}
	if c.Attachments.ConnectionStringEnv == "" {
		c.Attachments.ConnectionStringEnv = defaults.Attachments.ConnectionStringEnv
	}
	if c.Annotator.DefaultErrorType == 0 {
		c.Annotator.DefaultErrorType = defaults.Annotator.DefaultErrorType
	}
	if c.Render.Theme == "" {
		c.Render.Theme = defaults.Render.Theme
	}
	if c.Render.Width == 0 {
		c.Render.Width = defaults.Render.Width
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Queue.PageSize < 1 {
		return fmt.Errorf("queue.page_size must be at least 1")
	}

	switch c.Attachments.Backend {
	case BackendFilesystem, BackendAzure:
	default:
		return fmt.Errorf("attachments.backend %q must be %q or %q", c.Attachments.Backend, BackendFilesystem, BackendAzure)
	}

	if !c.Annotator.DefaultErrorType.Valid() {
		return fmt.Errorf("annotator.default_error_type is invalid")
	}

	if c.Render.Width < 20 {
		return fmt.Errorf("render.width must be at least 20")
	}

	return nil
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "mtqa.db")
}

// AttachmentsDir returns the filesystem backend root.
func (c *Config) AttachmentsDir() string {
	if filepath.IsAbs(c.Attachments.Dir) {
		return c.Attachments.Dir
	}
	return filepath.Join(c.DataDir, c.Attachments.Dir)
}

// AzureConnectionString reads the connection string from the configured
// environment variable.
func (c *Config) AzureConnectionString() string {
	return strings.TrimSpace(os.Getenv(c.Attachments.ConnectionStringEnv))
}
