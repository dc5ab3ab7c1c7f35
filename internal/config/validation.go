package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns validation errors.
func (c *Config) Validate() []error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Server.Port),
		})
	}

	if c.Database.Host == "" {
		errs = append(errs, &ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}
	if c.Database.User == "" {
		errs = append(errs, &ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}
	if c.Database.Password == "" {
		errs = append(errs, &ValidationError{
			Field:   "database.password",
			Message: "password is required (set MYSQL_PASSWORD)",
		})
	}
	if c.Database.Name == "" {
		errs = append(errs, &ValidationError{
			Field:   "database.name",
			Message: "database name is required",
		})
	}
	if c.Database.PoolSize < 1 {
		errs = append(errs, &ValidationError{
			Field:   "database.pool_size",
			Message: fmt.Sprintf("pool size must be at least 1, got %d", c.Database.PoolSize),
		})
	}

	if c.LLM.APIKey == "" {
		errs = append(errs, &ValidationError{
			Field:   "llm.api_key",
			Message: "api key is required (set GEMINI_API_KEY)",
		})
	}
	if c.LLM.Model == "" {
		errs = append(errs, &ValidationError{
			Field:   "llm.model",
			Message: "model is required",
		})
	}

	if c.Cache.TTLHosts < 0 || c.Cache.TTLProblems < 0 {
		errs = append(errs, &ValidationError{
			Field:   "cache",
			Message: "cache TTLs must not be negative",
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format %q", c.Logging.Format),
		})
	}

	return errs
}

// DSN builds the MySQL data source name for the Zabbix database.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&timeout=%ds",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.ConnectTimeout,
	)
}
