package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Provider struct {
		// Single-tenant fallback; per-request headers take precedence.
		BaseURL        string `yaml:"base_url"`
		AccessToken    string `yaml:"access_token"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"provider"`
	Catalog struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"catalog"`
	Poller struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"poller"`
	Logger struct {
		Level string `yaml:"level"`
	} `yaml:"logger"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FOXPAYS_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("FOXPAYS_ACCESS_TOKEN"); v != "" {
		cfg.Provider.AccessToken = v
	}
	if v := os.Getenv("FOXPAYS_TIMEOUT_SECONDS"); v != "" {
		cfg.Provider.TimeoutSeconds = atoiOr(cfg.Provider.TimeoutSeconds, v)
	}
	if v := os.Getenv("CATALOG_TTL_MINUTES"); v != "" {
		cfg.Catalog.TTLMinutes = atoiOr(cfg.Catalog.TTLMinutes, v)
	}
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		cfg.Poller.IntervalSeconds = atoiOr(cfg.Poller.IntervalSeconds, v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.TTLMinutes <= 0 {
		cfg.Catalog.TTLMinutes = 5
	}
	if cfg.Poller.IntervalSeconds <= 0 {
		cfg.Poller.IntervalSeconds = 10
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
