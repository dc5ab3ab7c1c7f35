package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// viperManager implements Manager using Viper.
type viperManager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
	watchChan  chan Config
}

// Load loads configuration from all sources.
func (m *viperManager) Load(ctx context.Context) error {
	m.viper = viper.New()

	m.viper.SetConfigFile(m.configPath)
	m.viper.SetConfigType("yaml")

	m.viper.SetEnvPrefix("ZABBIXCHAT")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	m.setDefaults()

	// The config file is optional; defaults + environment cover everything.
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// use defaults
		} else if os.IsNotExist(err) {
			// use defaults
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := m.unmarshalConfig(); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.applyEnvOverrides()

	return nil
}

// Get returns the current configuration.
func (m *viperManager) Get(ctx context.Context) *Config {
	return m.config
}

// Validate validates configuration is correct and complete.
func (m *viperManager) Validate(ctx context.Context) error {
	errs := m.config.Validate()
	if len(errs) > 0 {
		var errMsgs []string
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errMsgs, "\n  - "))
	}
	return nil
}

// Watch watches for configuration changes and reloads.
func (m *viperManager) Watch(ctx context.Context) <-chan Config {
	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		if err := m.unmarshalConfig(); err != nil {
			return
		}
		m.applyEnvOverrides()
		select {
		case m.watchChan <- *m.config:
		default:
			// channel full, skip this update
		}
	})

	return m.watchChan
}

// Reload reloads configuration from sources.
func (m *viperManager) Reload(ctx context.Context) error {
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := m.unmarshalConfig(); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.applyEnvOverrides()

	return nil
}

// setDefaults sets default values in viper.
func (m *viperManager) setDefaults() {
	defaults := Default()

	m.viper.SetDefault("server.host", defaults.Server.Host)
	m.viper.SetDefault("server.port", defaults.Server.Port)
	m.viper.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)

	m.viper.SetDefault("database.host", defaults.Database.Host)
	m.viper.SetDefault("database.port", defaults.Database.Port)
	m.viper.SetDefault("database.user", defaults.Database.User)
	m.viper.SetDefault("database.password", defaults.Database.Password)
	m.viper.SetDefault("database.name", defaults.Database.Name)
	m.viper.SetDefault("database.pool_size", defaults.Database.PoolSize)
	m.viper.SetDefault("database.max_idle", defaults.Database.MaxIdle)
	m.viper.SetDefault("database.conn_max_lifetime", defaults.Database.ConnMaxLifetime)
	m.viper.SetDefault("database.connect_timeout", defaults.Database.ConnectTimeout)

	m.viper.SetDefault("llm.api_key", defaults.LLM.APIKey)
	m.viper.SetDefault("llm.model", defaults.LLM.Model)
	m.viper.SetDefault("llm.max_output_tokens", defaults.LLM.MaxOutputTokens)
	m.viper.SetDefault("llm.timeout", defaults.LLM.Timeout)

	m.viper.SetDefault("cache.ttl_hosts", defaults.Cache.TTLHosts)
	m.viper.SetDefault("cache.ttl_problems", defaults.Cache.TTLProblems)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file", defaults.Logging.File)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// unmarshalConfig unmarshals viper config into the Config struct.
func (m *viperManager) unmarshalConfig() error {
	cfg := &Config{}

	cfg.Server.Host = m.viper.GetString("server.host")
	cfg.Server.Port = m.viper.GetInt("server.port")
	cfg.Server.AllowedOrigins = m.viper.GetStringSlice("server.allowed_origins")

	cfg.Database.Host = m.viper.GetString("database.host")
	cfg.Database.Port = m.viper.GetInt("database.port")
	cfg.Database.User = m.viper.GetString("database.user")
	cfg.Database.Password = m.viper.GetString("database.password")
	cfg.Database.Name = m.viper.GetString("database.name")
	cfg.Database.PoolSize = m.viper.GetInt("database.pool_size")
	cfg.Database.MaxIdle = m.viper.GetInt("database.max_idle")
	cfg.Database.ConnMaxLifetime = m.viper.GetInt("database.conn_max_lifetime")
	cfg.Database.ConnectTimeout = m.viper.GetInt("database.connect_timeout")

	cfg.LLM.APIKey = m.viper.GetString("llm.api_key")
	cfg.LLM.Model = m.viper.GetString("llm.model")
	cfg.LLM.MaxOutputTokens = m.viper.GetInt("llm.max_output_tokens")
	cfg.LLM.Timeout = m.viper.GetInt("llm.timeout")

	cfg.Cache.TTLHosts = m.viper.GetInt("cache.ttl_hosts")
	cfg.Cache.TTLProblems = m.viper.GetInt("cache.ttl_problems")

	cfg.Logging.Level = m.viper.GetString("logging.level")
	cfg.Logging.Format = m.viper.GetString("logging.format")
	cfg.Logging.File = m.viper.GetString("logging.file")
	cfg.Logging.MaxSizeMB = m.viper.GetInt("logging.max_size_mb")
	cfg.Logging.MaxBackups = m.viper.GetInt("logging.max_backups")
	cfg.Logging.MaxAgeDays = m.viper.GetInt("logging.max_age_days")
	cfg.Logging.Compress = m.viper.GetBool("logging.compress")

	m.config = cfg
	return nil
}

// applyEnvOverrides applies the environment variable names the deployment
// already uses, so existing .env files keep working.
func (m *viperManager) applyEnvOverrides() {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		m.config.LLM.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		m.config.LLM.Model = model
	}

	if host := os.Getenv("MYSQL_HOST"); host != "" {
		m.config.Database.Host = host
	}
	if port := os.Getenv("MYSQL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			m.config.Database.Port = p
		}
	}
	if user := os.Getenv("MYSQL_USER"); user != "" {
		m.config.Database.User = user
	}
	if pass := os.Getenv("MYSQL_PASSWORD"); pass != "" {
		m.config.Database.Password = pass
	}
	if name := os.Getenv("MYSQL_DATABASE"); name != "" {
		m.config.Database.Name = name
	}
	if size := os.Getenv("MYSQL_POOL_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			m.config.Database.PoolSize = s
		}
	}

	if ttl := os.Getenv("CACHE_TTL_HOSTS"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			m.config.Cache.TTLHosts = t
		}
	}
	if ttl := os.Getenv("CACHE_TTL_PROBLEMS"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			m.config.Cache.TTLProblems = t
		}
	}

	if host := os.Getenv("API_HOST"); host != "" {
		m.config.Server.Host = host
	}
	if port := os.Getenv("API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			m.config.Server.Port = p
		}
	}
}
