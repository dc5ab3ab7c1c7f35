package config

import "context"

// Config holds all runtime configuration for the assistant.
type Config struct {
	// Server configuration
	Server struct {
		Host string
		Port int
		// AllowedOrigins lists origins permitted to call the HTTP API.
		// Empty defaults to ["*"] (the UI is served from the same origin).
		AllowedOrigins []string
	}

	// Database holds the Zabbix MySQL connection settings. The configured
	// role is expected to be read-only; nothing in this service writes.
	Database struct {
		Host            string
		Port            int
		User            string
		Password        string
		Name            string
		PoolSize        int
		MaxIdle         int
		ConnMaxLifetime int // seconds
		ConnectTimeout  int // seconds
	}

	// LLM holds the Gemini completion-service settings.
	LLM struct {
		APIKey          string
		Model           string
		MaxOutputTokens int
		Timeout         int // seconds
	}

	// Cache TTLs per data category, in seconds. Host inventories change
	// rarely; active problems change constantly.
	Cache struct {
		TTLHosts    int
		TTLProblems int
	}

	// Logging configuration
	Logging struct {
		Level      string
		Format     string // "json" | "text"
		File       string // empty = stderr only
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
}

// Manager defines the interface for configuration access.
type Manager interface {
	// Load loads configuration from all sources.
	Load(ctx context.Context) error

	// Get returns the current configuration.
	Get(ctx context.Context) *Config

	// Validate validates configuration is correct and complete.
	Validate(ctx context.Context) error

	// Watch watches for configuration file changes and reloads.
	Watch(ctx context.Context) <-chan Config

	// Reload reloads configuration from sources.
	Reload(ctx context.Context) error
}

// NewManager creates a configuration manager reading the given YAML file.
func NewManager(configPath string) Manager {
	return &viperManager{
		configPath: configPath,
		config:     Default(),
		watchChan:  make(chan Config, 1),
	}
}
