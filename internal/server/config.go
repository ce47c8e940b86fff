package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	DBUrl    string `yaml:"db_url"`
	TLSCert  string `yaml:"tls_cert"`
	TLSKey   string `yaml:"tls_key"`
	APIToken string `yaml:"api_token"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port: 8000,
		Bind: "0.0.0.0",
	}
}

// ConfigPath returns the server config location under home.
func ConfigPath(home string) string {
	return filepath.Join(home, ".todo", "server.yaml")
}

// LoadConfig loads server config from ~/.todo/server.yaml on fsys, falling
// back to defaults when the file does not exist. Environment variables
// override file values: TODO_SERVER_PORT, TODO_SERVER_BIND,
// TODO_SERVER_TLS_CERT, TODO_SERVER_TLS_KEY, TODO_SERVER_API_TOKEN and
// DATABASE_URL.
func LoadConfig(fsys afero.Fs, home string) (Config, error) {
	cfg := DefaultConfig()

	if home != "" {
		path := ConfigPath(home)
		data, err := afero.ReadFile(fsys, path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODO_SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("TODO_SERVER_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("TODO_SERVER_TLS_CERT"); v != "" {
		cfg.TLSCert = v
	}
	if v := os.Getenv("TODO_SERVER_TLS_KEY"); v != "" {
		cfg.TLSKey = v
	}
	if v := os.Getenv("TODO_SERVER_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
}

// WriteConfig writes cfg to ~/.todo/server.yaml unless the file exists.
// It reports whether a file was written.
func WriteConfig(fsys afero.Fs, home string, cfg Config) (bool, error) {
	path := ConfigPath(home)
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// Addr returns the listen address as "bind:port".
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// HasTLS returns true if both TLS cert and key are configured.
func (c Config) HasTLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
