package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultProfile is the config profile used when none is selected
const DefaultProfile = "default"

// ProfileConfig holds the settings stored for one config profile
type ProfileConfig struct {
	// Regions is the comma-joined region list. Nil means "never saved",
	// an empty string is a deliberately empty set.
	Regions         *string `yaml:"regions,omitempty"`
	AccessKeyID     string  `yaml:"aws_access_key_id,omitempty"`
	SecretAccessKey string  `yaml:"aws_secret_access_key,omitempty"`
	SessionToken    string  `yaml:"aws_session_token,omitempty"`
	AWSProfile      string  `yaml:"aws_profile,omitempty"`
}

// Config represents the application configuration
type Config struct {
	ActiveProfile string                    `yaml:"active_profile,omitempty"`
	Profiles      map[string]*ProfileConfig `yaml:"profiles,omitempty"`
}

// GetConfigDir returns the config directory path (~/.cirrus)
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cirrus"
	}
	return filepath.Join(home, ".cirrus")
}

// GetConfigPath returns the default config file path (~/.cirrus/config.yaml)
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load reads the configuration at path. A missing file yields an empty
// config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: make(map[string]*ProfileConfig)}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*ProfileConfig)
	}

	return &cfg, nil
}

// Save writes the configuration to path, creating its directory
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold access keys
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Profile returns the settings of a config profile, or nil if absent
func (c *Config) Profile(name string) *ProfileConfig {
	return c.Profiles[name]
}

// EnsureProfile returns the settings of a config profile, creating them
func (c *Config) EnsureProfile(name string) *ProfileConfig {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*ProfileConfig)
	}
	p, ok := c.Profiles[name]
	if !ok {
		p = &ProfileConfig{}
		c.Profiles[name] = p
	}
	return p
}

// ResolveProfileName picks the config profile: explicit name, then the
// saved active profile, then "default".
func (c *Config) ResolveProfileName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.ActiveProfile != "" {
		return c.ActiveProfile
	}
	return DefaultProfile
}

// Update loads the config at path, applies fn and saves the result
func Update(path string, fn func(*Config) error) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return Save(path, cfg)
}

// SetAWSProfile stores the named AWS profile for a config profile
func SetAWSProfile(path, configProfile, awsProfile string) error {
	return Update(path, func(cfg *Config) error {
		cfg.EnsureProfile(configProfile).AWSProfile = awsProfile
		return nil
	})
}
