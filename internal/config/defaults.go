package config

// Default returns a configuration with all default values.
func Default() *Config {
	cfg := &Config{}

	// Server defaults
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.AllowedOrigins = []string{"*"}

	// Database defaults (matches a stock Zabbix MySQL install)
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 3306
	cfg.Database.User = "zabbix"
	cfg.Database.Password = ""
	cfg.Database.Name = "zabbix"
	cfg.Database.PoolSize = 5
	cfg.Database.MaxIdle = 5
	cfg.Database.ConnMaxLifetime = 300
	cfg.Database.ConnectTimeout = 10

	// LLM defaults
	cfg.LLM.APIKey = ""
	cfg.LLM.Model = "gemini-1.5-flash"
	cfg.LLM.MaxOutputTokens = 2048
	cfg.LLM.Timeout = 30

	// Cache defaults: hosts 5 minutes, problems 1 minute
	cfg.Cache.TTLHosts = 300
	cfg.Cache.TTLProblems = 60

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.File = ""
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 10
	cfg.Logging.MaxAgeDays = 30
	cfg.Logging.Compress = true

	return cfg
}
