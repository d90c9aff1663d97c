package config

import (
	"golang-stock-alerts/pkg/config"
)

// Feed holds price feed configuration.
type Feed struct {
	BaseURL string   `mapstructure:"base_url"`
	APIKey  string   `mapstructure:"api_key"`
	Timeout string   `mapstructure:"timeout"`
	Symbols []string `mapstructure:"symbols"`
}

// Poller holds tick cycle configuration.
type Poller struct {
	Interval    string `mapstructure:"interval"`
	MaxAttempts int    `mapstructure:"max_attempts"`
	RetryDelay  string `mapstructure:"retry_delay"`
}

// Telegram holds the optional secondary notification channel configuration.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
}

// Config holds the full configuration for the alert service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Mail     config.Mail     `mapstructure:"mail"`
	Feed     Feed            `mapstructure:"feed"`
	Poller   Poller          `mapstructure:"poller"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the alert service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
