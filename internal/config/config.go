// Package config loads service configuration from a YAML file with
// environment variable overrides and sane defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int    `yaml:"port"`
		AdminJWTSecret string `yaml:"admin_jwt_secret"`
	} `yaml:"server"`
	Ledger struct {
		BaseAssetSymbol string `yaml:"base_asset_symbol"`
	} `yaml:"ledger"`
	Schedule struct {
		RebaseCron  string `yaml:"rebase_cron"`
		HarvestCron string `yaml:"harvest_cron"`
		FundingCron string `yaml:"funding_cron"`
	} `yaml:"schedule"`
	Database struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; defaults and env cover everything
// except the admin secret.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("PILOT_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PILOT_ADMIN_JWT_SECRET"); v != "" {
		cfg.Server.AdminJWTSecret = v
	}
	if v := os.Getenv("PILOT_BASE_ASSET"); v != "" {
		cfg.Ledger.BaseAssetSymbol = v
	}
	if v := os.Getenv("PILOT_REBASE_CRON"); v != "" {
		cfg.Schedule.RebaseCron = v
	}
	if v := os.Getenv("PILOT_HARVEST_CRON"); v != "" {
		cfg.Schedule.HarvestCron = v
	}
	if v := os.Getenv("PILOT_FUNDING_CRON"); v != "" {
		cfg.Schedule.FundingCron = v
	}
	if v := os.Getenv("PILOT_DB_CONNECTION"); v != "" {
		cfg.Database.ConnectionString = v
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3010
	}
	if cfg.Ledger.BaseAssetSymbol == "" {
		cfg.Ledger.BaseAssetSymbol = "USDX"
	}
	if cfg.Schedule.RebaseCron == "" {
		cfg.Schedule.RebaseCron = "0 * * * *"
	}
	if cfg.Schedule.HarvestCron == "" {
		cfg.Schedule.HarvestCron = "30 * * * *"
	}
	if cfg.Schedule.FundingCron == "" {
		cfg.Schedule.FundingCron = "*/15 * * * *"
	}

	return cfg, nil
}

// Validate checks the fields that have no safe default.
func (c *Config) Validate() error {
	if c.Server.AdminJWTSecret == "" {
		return fmt.Errorf("server.admin_jwt_secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}
