package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aau-energy/microgrid/core/schedule"
	"github.com/aau-energy/microgrid/infra/mqtt"
)

// Config is the root configuration of the service.
type Config struct {
	Battery   BatteryConfig   `json:"battery"`
	Schedule  schedule.Config `json:"schedule"`
	Metrics   MetricsConfig   `json:"metrics"`
	Telemetry mqtt.Config     `json:"telemetry"`
}

// Load reads the configuration file (json or yaml by extension), applies
// MG_-prefixed environment overrides, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. MG_BATTERY__CAPACITY_KWH=12.
	// The callback rewrites "__" to "."; the provider delimiter must match the
	// rewritten form or keys stay flat and never merge into the sections.
	if err := k.Load(env.Provider("MG_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Battery.SetDefaults()
	cfg.Schedule.SetDefaults()
	cfg.Telemetry.SetDefaults()
	if err := cfg.Battery.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
