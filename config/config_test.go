package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  capacity_kwh: 12.0
  initial_soc_kwh: 6.0
  charge_eff: 0.9
  discharge_eff: 0.92
  sim_step_minutes: 5
schedule:
  step_minutes: 10
  min_block_minutes: 45
  max_windows: 5
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
telemetry:
  enabled: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"capacity_kwh", cfg.Battery.CapacityKWh, 12.0},
		{"initial_soc_kwh", cfg.Battery.InitialSocKWh, 6.0},
		{"charge_eff", cfg.Battery.ChargeEff, 0.9},
		{"discharge_eff", cfg.Battery.DischargeEff, 0.92},
		{"sim_step_minutes", cfg.Battery.SimStepMinutes, 5},
		{"step_minutes", cfg.Schedule.StepMinutes, 10},
		{"min_block_minutes", cfg.Schedule.MinBlockMinutes, 45},
		{"max_windows", cfg.Schedule.MaxWindows, 5},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"telemetry_enabled", cfg.Telemetry.Enabled, false},
		{"telemetry_topic_default", cfg.Telemetry.StatusTopic, "microgrid/battery/status"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Battery.CapacityKWh != 10.0 || cfg.Battery.InitialSocKWh != 5.0 {
		t.Fatalf("battery defaults wrong: %+v", cfg.Battery)
	}
	if cfg.Battery.ChargeEff != 0.95 || cfg.Battery.DischargeEff != 0.95 || cfg.Battery.SimStepMinutes != 10 {
		t.Fatalf("battery defaults wrong: %+v", cfg.Battery)
	}
	if cfg.Schedule.StepMinutes != 5 || cfg.Schedule.MinBlockMinutes != 30 || cfg.Schedule.MaxWindows != 10 {
		t.Fatalf("schedule defaults wrong: %+v", cfg.Schedule)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("battery:\n  capacity_kwh: 10.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MG_BATTERY__CAPACITY_KWH", "20")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Battery.CapacityKWh != 20.0 {
		t.Fatalf("env override not applied: %g", cfg.Battery.CapacityKWh)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(``), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoad_InvalidBattery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  capacity_kwh: 10.0
  initial_soc_kwh: 20.0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for soc above capacity")
	}
}

func TestBatteryConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*BatteryConfig)
	}{
		{"negative capacity", func(c *BatteryConfig) { c.CapacityKWh = -1 }},
		{"charge eff above one", func(c *BatteryConfig) { c.ChargeEff = 1.5 }},
		{"zero discharge eff", func(c *BatteryConfig) { c.DischargeEff = -0.1 }},
		{"negative step", func(c *BatteryConfig) { c.SimStepMinutes = -5 }},
	}
	for _, tc := range cases {
		cfg := BatteryConfig{}
		cfg.SetDefaults()
		tc.mod(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
