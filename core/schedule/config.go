package schedule

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines scheduling defaults loaded from configuration.
type Config struct {
	StepMinutes     int `json:"step_minutes" yaml:"step_minutes"`
	MinBlockMinutes int `json:"min_block_minutes" yaml:"min_block_minutes"`
	MaxWindows      int `json:"max_windows" yaml:"max_windows"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.StepMinutes == 0 {
		c.StepMinutes = 5
	}
	if c.MinBlockMinutes == 0 {
		c.MinBlockMinutes = 30
	}
	if c.MaxWindows == 0 {
		c.MaxWindows = DefaultMaxWindows
	}
}

// Validate checks the parameter ranges.
func (c Config) Validate() error {
	if c.StepMinutes <= 0 || c.StepMinutes > 60 {
		return fmt.Errorf("step_minutes must be in (0,60], got %d", c.StepMinutes)
	}
	if c.MinBlockMinutes < 0 {
		return fmt.Errorf("min_block_minutes must be non-negative, got %d", c.MinBlockMinutes)
	}
	if c.MaxWindows < 0 {
		return fmt.Errorf("max_windows must be non-negative, got %d", c.MaxWindows)
	}
	return nil
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
