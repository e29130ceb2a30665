package model

import "time"

// BatteryStatus is a point-in-time view of the battery state.
type BatteryStatus struct {
	NowSocKWh   float64   `json:"now_soc_kwh"`
	CapacityKWh float64   `json:"capacity_kwh"`
	SocPct      float64   `json:"soc_pct"`
	AsOf        time.Time `json:"as_of"`
}

// RuntimeEstimate is the result of a runtime-to-depletion simulation.
type RuntimeEstimate struct {
	LoadKW         float64   `json:"load_kw"`
	StartSocKWh    float64   `json:"start_soc_kwh"`
	RuntimeMinutes int       `json:"runtime_minutes"`
	EndTime        time.Time `json:"end_time"`
	Depleted       bool      `json:"depleted"`
}

// SocTargetETA reports when a SOC target is expected to be reached.
// ETA is nil when the forecast horizon ends before the target is met.
type SocTargetETA struct {
	TargetKWh float64    `json:"target_kwh"`
	ETA       *time.Time `json:"eta"`
	Reachable bool       `json:"reachable"`
}
