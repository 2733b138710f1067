// Package config loads the environment configuration from YAML.
// Search order: explicit path, ./configs/web2048.yaml, built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the browser environment. Durations are
// expressed in milliseconds in the YAML file.
type Config struct {
	URL string `yaml:"url"`

	Browser struct {
		Headless  bool   `yaml:"headless"`
		Width     int    `yaml:"width"`
		Height    int    `yaml:"height"`
		UserAgent string `yaml:"user_agent"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"browser"`

	Settle struct {
		DelayMs       int `yaml:"delay_ms"`
		MaxMs         int `yaml:"max_ms"`
		StableSamples int `yaml:"stable_samples"`
	} `yaml:"settle"`

	Extract struct {
		RetryIntervalMs int `yaml:"retry_interval_ms"`
		CellTimeoutMs   int `yaml:"cell_timeout_ms"`
	} `yaml:"extract"`
}

func Default() Config {
	var cfg Config
	cfg.URL = "https://2048game.com/"
	cfg.Browser.Headless = true
	cfg.Browser.Width = 1280
	cfg.Browser.Height = 900
	cfg.Browser.TimeoutMs = 15000
	cfg.Settle.DelayMs = 100
	cfg.Settle.MaxMs = 2000
	cfg.Settle.StableSamples = 2
	cfg.Extract.RetryIntervalMs = 20
	cfg.Extract.CellTimeoutMs = 3000
	return cfg
}

// Load reads the configuration. A custom path must exist; otherwise the
// local configs directory is tried before falling back to defaults.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if data, err := os.ReadFile("configs/web2048.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse configs/web2048.yaml: %w", err)
		}
	}
	return cfg, nil
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Settle.DelayMs) * time.Millisecond
}

func (c Config) MaxSettle() time.Duration {
	return time.Duration(c.Settle.MaxMs) * time.Millisecond
}

func (c Config) RetryInterval() time.Duration {
	return time.Duration(c.Extract.RetryIntervalMs) * time.Millisecond
}

func (c Config) CellTimeout() time.Duration {
	return time.Duration(c.Extract.CellTimeoutMs) * time.Millisecond
}

func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutMs) * time.Millisecond
}
