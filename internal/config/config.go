package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. Fields left empty in the file
// fall back to the defaults applied by ApplyDefaults.
type Config struct {
	// ListenAddr is the host:port the HTTP API binds to.
	ListenAddr string `yaml:"listenAddr" json:"listenAddr"`

	// TrustedOrigins are the browser origins allowed by CORS.
	TrustedOrigins []string `yaml:"trustedOrigins" json:"trustedOrigins"`

	// PlatformAdminGroup is the identity-provider group whose members
	// resolve to the platform dashboard regardless of memberships.
	PlatformAdminGroup string `yaml:"platformAdminGroup" json:"platformAdminGroup"`

	// ScopeStatePath is the directory holding persisted active scope
	// state. Empty means the default under the user's home directory.
	ScopeStatePath string `yaml:"scopeStatePath" json:"scopeStatePath"`

	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

// PostgresConfig selects and tunes the PostgreSQL backend. An empty
// ConnString selects the in-memory stores instead.
type PostgresConfig struct {
	ConnString      string `yaml:"connString" json:"connString"`
	MaxConns        int32  `yaml:"maxConns" json:"maxConns"`
	MinConns        int32  `yaml:"minConns" json:"minConns"`
	MaxConnLifetime int32  `yaml:"maxConnLifetime" json:"maxConnLifetime"`
	MaxConnIdleTime int32  `yaml:"maxConnIdleTime" json:"maxConnIdleTime"`
}

// Load reads a config file. Format is selected by extension, JSON for
// .json and YAML otherwise. An empty path returns a default config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if strings.HasSuffix(strings.ToLower(path), ".json") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse JSON config: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills in defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "localhost:8080"
	}
	if c.PlatformAdminGroup == "" {
		c.PlatformAdminGroup = "platform-admins"
	}
	if len(c.TrustedOrigins) == 0 {
		c.TrustedOrigins = []string{"http://localhost:3000"}
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	for _, origin := range c.TrustedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("trusted origin %q must include a scheme", origin)
		}
	}
	return nil
}
