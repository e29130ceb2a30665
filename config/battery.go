package config

import "fmt"

// BatteryConfig holds the physical battery parameters and the simulation step.
type BatteryConfig struct {
	CapacityKWh    float64 `json:"capacity_kwh"`
	InitialSocKWh  float64 `json:"initial_soc_kwh"`
	ChargeEff      float64 `json:"charge_eff"`
	DischargeEff   float64 `json:"discharge_eff"`
	SimStepMinutes int     `json:"sim_step_minutes"`
}

// SetDefaults applies the site defaults: a 10 kWh pack at 50% with 95%
// round-trip legs and a 10-minute simulation step.
func (c *BatteryConfig) SetDefaults() {
	if c.CapacityKWh == 0 {
		c.CapacityKWh = 10.0
	}
	if c.InitialSocKWh == 0 {
		c.InitialSocKWh = 5.0
	}
	if c.ChargeEff == 0 {
		c.ChargeEff = 0.95
	}
	if c.DischargeEff == 0 {
		c.DischargeEff = 0.95
	}
	if c.SimStepMinutes == 0 {
		c.SimStepMinutes = 10
	}
}

// Validate checks the physical parameter ranges.
func (c BatteryConfig) Validate() error {
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("capacity_kwh must be positive, got %g", c.CapacityKWh)
	}
	if c.InitialSocKWh < 0 || c.InitialSocKWh > c.CapacityKWh {
		return fmt.Errorf("initial_soc_kwh must be in [0, %g], got %g", c.CapacityKWh, c.InitialSocKWh)
	}
	if c.ChargeEff <= 0 || c.ChargeEff > 1 {
		return fmt.Errorf("charge_eff must be in (0,1], got %g", c.ChargeEff)
	}
	if c.DischargeEff <= 0 || c.DischargeEff > 1 {
		return fmt.Errorf("discharge_eff must be in (0,1], got %g", c.DischargeEff)
	}
	if c.SimStepMinutes <= 0 {
		return fmt.Errorf("sim_step_minutes must be positive, got %d", c.SimStepMinutes)
	}
	return nil
}
