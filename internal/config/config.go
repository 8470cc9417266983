// Package config provides configuration loading and validation for the
// newsroom agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or environment variables.
type Config struct {
	// Endpoints
	ListenAddr   string `json:"listen_addr,omitempty"`   // Address the coordinator serves on
	ArchivistURL string `json:"archivist_url,omitempty"` // Base URL of the external archive agent
	TelemetryURL string `json:"telemetry_url,omitempty"` // Optional telemetry collector endpoint

	// Credentials
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	SearchCX    string `json:"search_cx,omitempty"`    // Custom search engine ID
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for the publication archive

	// Pipeline limits
	MaxRevisions int `json:"max_revisions,omitempty"` // Revision cycles allowed per story

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Use headless browser for JS-heavy sources
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills empty fields from environment variables. Explicit config
// file values win over the environment.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.SearchCX == "" {
		c.SearchCX = os.Getenv("SEARCH_CX")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.ArchivistURL == "" {
		c.ArchivistURL = os.Getenv("ARCHIVIST_URL")
	}
	if c.TelemetryURL == "" {
		c.TelemetryURL = os.Getenv("TELEMETRY_URL")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxRevisions < 0 {
		return fmt.Errorf("config error: 'max_revisions' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.ArchivistURL == "" {
		result.ArchivistURL = defaults.ArchivistURL
	}
	if result.TelemetryURL == "" {
		result.TelemetryURL = defaults.TelemetryURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.SearchCX == "" {
		result.SearchCX = defaults.SearchCX
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.MaxRevisions == 0 {
		result.MaxRevisions = defaults.MaxRevisions
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
