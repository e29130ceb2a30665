package metrics

import "time"

// QueryResult describes one completed window or simulation query.
type QueryResult struct {
	Kind     string // "energy_windows", "green_windows", "runtime", "soc_targets"
	Windows  int    // number of windows/targets produced
	Reason   string // non-empty when the query degraded (e.g. insufficient data)
	Duration time.Duration
	At       time.Time
}

// BatterySample is a point-in-time battery state for observability purposes.
type BatterySample struct {
	SocKWh      float64
	CapacityKWh float64
	At          time.Time
}

// MetricsSink records query outcomes and battery state for observability.
type MetricsSink interface {
	RecordQuery(results []QueryResult) error
	RecordBatteryState(samples []BatterySample) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordQuery([]QueryResult) error          { return nil }
func (NopSink) RecordBatteryState([]BatterySample) error { return nil }
