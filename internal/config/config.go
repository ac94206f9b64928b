// Package config loads client configuration from YAML with first-match
// discovery and observed defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "authctl.yaml"
	homeConfigDir     = ".authctl"
	homeConfigName    = "config.yaml"

	defaultBaseURL        = "http://127.0.0.1:8000"
	defaultRequestTimeout = 15 * time.Second
	defaultSessionTTL     = 3 * time.Hour
	defaultCheckInterval  = 5 * time.Minute
	defaultStoreFile      = "session.db"
	defaultLogLevel       = "info"
)

// Duration wraps time.Duration for YAML decoding of values like "3h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the client configuration shape for authctl.yaml.
type Config struct {
	BaseURL        string   `yaml:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	SessionTTL     Duration `yaml:"session_ttl"`
	CheckInterval  Duration `yaml:"check_interval"`
	StorePath      string   `yaml:"store_path"`
	LogLevel       string   `yaml:"log_level"`
}

// Default returns the configuration matching the platform's observed
// behavior: 3h session TTL, 5m expiry checks, 15s request timeout.
func Default() Config {
	cfg := Config{
		BaseURL:        defaultBaseURL,
		RequestTimeout: Duration(defaultRequestTimeout),
		SessionTTL:     Duration(defaultSessionTTL),
		CheckInterval:  Duration(defaultCheckInterval),
		LogLevel:       defaultLogLevel,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.StorePath = filepath.Join(home, homeConfigDir, defaultStoreFile)
	} else {
		cfg.StorePath = defaultStoreFile
	}
	return cfg
}

// Load reads and validates a config file, filling unset fields with
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Discover resolves the config file location with first-match semantics:
// explicit path, then ./authctl.yaml, then ~/.authctl/config.yaml.
func Discover(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverFrom(explicitPath, cwd, homeDir)
}

// DiscoverFrom is a testable variant of Discover.
func DiscoverFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// If explicit path is set, not found is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// LoadOrDefault discovers and loads a config file, or returns defaults
// when no file exists.
func LoadOrDefault(explicitPath string) (Config, error) {
	path, found, err := Discover(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if c.RequestTimeout.Std() <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.SessionTTL.Std() <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.CheckInterval.Std() <= 0 {
		return errors.New("check_interval must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = def.BaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.CheckInterval == 0 {
		c.CheckInterval = def.CheckInterval
	}
	if strings.TrimSpace(c.StorePath) == "" {
		c.StorePath = def.StorePath
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
}
