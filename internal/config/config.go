package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Timezone       string  `yaml:"timezone"`
		CacheTTLSecond int     `yaml:"cache_ttl_seconds"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"api"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Payment struct {
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
		TerminalStatus      string `yaml:"terminal_status"`
	} `yaml:"payment"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.API.Timezone == "" {
		cfg.API.Timezone = "UTC"
	}
	if cfg.API.RatePerSecond <= 0 {
		cfg.API.RatePerSecond = 10
	}
	if cfg.API.RateBurst <= 0 {
		cfg.API.RateBurst = 20
	}
	if cfg.Payment.PollIntervalSeconds <= 0 {
		cfg.Payment.PollIntervalSeconds = 2
	}
	if cfg.Payment.TerminalStatus == "" {
		cfg.Payment.TerminalStatus = "COMPLETED"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/fieldbook.db"
	}
	if cfg.Backup.Path == "" {
		cfg.Backup.Path = "data/backups"
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PollInterval returns the configured interval between payment status checks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Payment.PollIntervalSeconds) * time.Second
}

// CacheTTL returns the catalog cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.API.CacheTTLSecond) * time.Second
}
