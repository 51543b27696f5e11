package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		Secret        string `yaml:"secret"`
		Cookie        string `yaml:"cookie"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
}

// DefaultConfig returns a config with sensible defaults for local development.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Database.URL = "postgres://localhost:5432/groundwork?sslmode=disable"
	cfg.Auth.Secret = "dev-secret-change-me"
	cfg.Auth.Cookie = "gw_session"
	cfg.Auth.TokenTTLHours = 72
	return cfg
}

// LoadConfig reads the yaml config at path, overlaying it on the defaults.
// A missing file is not an error: defaults apply. DATABASE_URL in the
// environment overrides the file in either case.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}
