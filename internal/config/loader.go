package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Poll cadence bounds. Out-of-range values are clamped, not rejected, so a
// fat-fingered config never silences the banner.
const (
	MinAlertPollSeconds = 1
	MaxAlertPollSeconds = 300

	MinSettingsPollSeconds = 5
	MaxSettingsPollSeconds = 3600
)

// Load reads, defaults, clamps and validates the agent configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source.AlertPollSeconds == 0 {
		cfg.Source.AlertPollSeconds = 5
	}
	cfg.Source.AlertPollSeconds = clamp(cfg.Source.AlertPollSeconds, MinAlertPollSeconds, MaxAlertPollSeconds)

	if cfg.Settings.PollSeconds == 0 {
		cfg.Settings.PollSeconds = 60
	}
	cfg.Settings.PollSeconds = clamp(cfg.Settings.PollSeconds, MinSettingsPollSeconds, MaxSettingsPollSeconds)

	if cfg.API.Listen == "" {
		cfg.API.Listen = "127.0.0.1:8321"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 14
	}
	if cfg.Auth.TokenEnv == "" {
		cfg.Auth.TokenEnv = "GRIDBANNER_TOKEN"
	}
}

// Validate checks configuration invariants. Errors are aggregated so one run
// reports every problem.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Source.AlertURL != "" && cfg.Source.AlertFileLocation != "" {
		errs = append(errs, errors.New("source.alert_url and source.alert_file_location are mutually exclusive"))
	}
	if cfg.API.Enabled {
		if _, _, err := net.SplitHostPort(cfg.API.Listen); err != nil {
			errs = append(errs, fmt.Errorf("invalid api.listen %q: %w", cfg.API.Listen, err))
		}
	}
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log.level %q (trace|debug|info|warn|error)", cfg.Log.Level))
	}
	if cfg.Auth.Enabled && cfg.Auth.TokenEnv == "" {
		errs = append(errs, errors.New("auth.token_env is required when auth.enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
