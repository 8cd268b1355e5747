package config

import "strings"

// Config is the complete agent configuration.
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	Source   SourceConfig   `yaml:"source"`
	Settings SettingsConfig `yaml:"settings"`
	Auth     AuthConfig     `yaml:"auth"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
}

// AgentConfig holds workstation-local identity.
type AgentConfig struct {
	// SiteName is a comma-separated list of site tags this workstation
	// belongs to, matched against the alert's site filter.
	SiteName string `yaml:"site_name"`
}

// Sites returns the parsed site tag list.
func (a AgentConfig) Sites() []string {
	if strings.TrimSpace(a.SiteName) == "" {
		return nil
	}
	parts := strings.Split(a.SiteName, ",")
	sites := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sites = append(sites, s)
		}
	}
	return sites
}

// SourceConfig defines where alerts come from. AlertURL and
// AlertFileLocation are mutually exclusive; when neither is set the resolver
// falls back to DiscoveryURLs.
type SourceConfig struct {
	AlertURL          string   `yaml:"alert_url"`
	AlertFileLocation string   `yaml:"alert_file_location"`
	AlertPollSeconds  int      `yaml:"alert_poll_seconds"`
	DiscoveryURLs     []string `yaml:"discovery_urls"`
}

// SettingsConfig defines the admin endpoint for global feature flags.
type SettingsConfig struct {
	URL         string `yaml:"url"`
	PollSeconds int    `yaml:"poll_seconds"`
}

// AuthConfig controls bearer-token auth on URL fetches. Token acquisition is
// external; the agent only reads the token from the named environment
// variable.
type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TokenEnv string `yaml:"token_env"`
}

// APIConfig controls the local status HTTP server.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LogConfig controls log output and rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}
