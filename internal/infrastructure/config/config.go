package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPollIntervalSec = 300
	MinPollIntervalSec     = 60
	DefaultFetchTimeoutSec = 10
	DefaultPortfolioFile   = "etf_tracker.yaml"
	DefaultSource          = "justetf"
)

type Config struct {
	App struct {
		PollIntervalSec int    `toml:"poll_interval_sec"`
		FetchTimeoutSec int    `toml:"fetch_timeout_sec"`
		PortfolioFile   string `toml:"portfolio_file"`
		Source          string `toml:"source"`
		LogLevel        string `toml:"log_level"`
	} `toml:"app"`

	Market struct {
		OpenHour  int    `toml:"open_hour"`
		CloseHour int    `toml:"close_hour"`
		Workdays  int    `toml:"workdays"`
		Timezone  string `toml:"timezone"` // e.g. Europe/Berlin, empty = local
	} `toml:"market"`

	JustETF struct {
		BaseURL   string `toml:"base_url"`
		Locale    string `toml:"locale"`
		Currency  string `toml:"currency"`
		UserAgent string `toml:"user_agent"`
	} `toml:"justetf"`

	HTTP struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"http"`

	Storage struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
			Channel    string `toml:"channel"`
		} `toml:"redis"`
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied, as if loaded from an empty file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.App.PollIntervalSec <= 0 {
		cfg.App.PollIntervalSec = DefaultPollIntervalSec
	}
	if cfg.App.PollIntervalSec < MinPollIntervalSec {
		cfg.App.PollIntervalSec = MinPollIntervalSec
	}
	if cfg.App.FetchTimeoutSec <= 0 {
		cfg.App.FetchTimeoutSec = DefaultFetchTimeoutSec
	}
	if strings.TrimSpace(cfg.App.PortfolioFile) == "" {
		cfg.App.PortfolioFile = DefaultPortfolioFile
	}
	if strings.TrimSpace(cfg.App.Source) == "" {
		cfg.App.Source = DefaultSource
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Market.OpenHour == 0 && cfg.Market.CloseHour == 0 {
		cfg.Market.OpenHour = 8
		cfg.Market.CloseHour = 22
	}
	if cfg.Market.Workdays <= 0 {
		cfg.Market.Workdays = 5
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = "127.0.0.1:8080"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/etfmon.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "etfmon"
	}
}

func validate(cfg *Config) error {
	if cfg.Market.OpenHour < 0 || cfg.Market.CloseHour > 24 || cfg.Market.OpenHour >= cfg.Market.CloseHour {
		return fmt.Errorf("market hours invalid: open=%d close=%d", cfg.Market.OpenHour, cfg.Market.CloseHour)
	}
	if cfg.Market.Workdays > 7 {
		return fmt.Errorf("market.workdays must be 1..7, got %d", cfg.Market.Workdays)
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	return nil
}

// Location resolves market.timezone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Market.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Market.Timezone)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.App.PollIntervalSec) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.App.FetchTimeoutSec) * time.Second
}
