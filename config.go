package recipehub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level aggregation configuration.
type Config struct {
	Providers   []ProviderConfig `yaml:"providers"`
	Priority    []string         `yaml:"priority"`
	MetricsPath string           `yaml:"metrics_path"`
}

// ProviderConfig configures a single recipe provider.
type ProviderConfig struct {
	Name       string `yaml:"name"`
	APIKey     string `yaml:"api_key"`
	DailyQuota int    `yaml:"daily_quota"`
	Strategy   string `yaml:"strategy"`
}

// LoadConfig reads and parses a YAML config file. Environment variables
// in the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("recipehub: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("recipehub: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the config for required fields and consistency.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("recipehub: config: at least one provider is required")
	}

	names := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("recipehub: config: provider[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("recipehub: config: duplicate provider %q", p.Name)
		}
		names[p.Name] = true

		if p.DailyQuota <= 0 {
			return fmt.Errorf("recipehub: config: provider[%d] (%s): daily_quota must be positive", i, p.Name)
		}
		if _, err := ParseStrategy(p.Strategy); err != nil {
			return fmt.Errorf("recipehub: config: provider[%d] (%s): invalid strategy %q", i, p.Name, p.Strategy)
		}
	}

	for i, name := range c.Priority {
		if !names[name] {
			return fmt.Errorf("recipehub: config: priority[%d]: unknown provider %q", i, name)
		}
	}

	return nil
}
