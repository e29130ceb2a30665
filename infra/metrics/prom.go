package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/aau-energy/microgrid/core/metrics"
)

// PromSink records query outcomes and battery state in Prometheus metrics.
type PromSink struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	socKWh   prometheus.Gauge
	socPct   prometheus.Gauge
}

// NewPromSink registers the engine metrics on the provided registerer. If reg
// is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_queries_total",
		Help: "Total number of window and simulation queries",
	}, []string{"kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energy_query_duration_seconds",
		Help:    "Time spent answering a query",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	socKWh := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_soc_kwh",
		Help: "Current battery state of charge in kWh",
	})
	socPct := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_soc_percent",
		Help: "Current battery state of charge as a percentage of capacity",
	})

	if err := reg.Register(queries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			queries = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(socKWh); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			socKWh = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(socPct); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			socPct = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{queries: queries, duration: duration, socKWh: socKWh, socPct: socPct}, nil
}

// RecordQuery increments the query counter and observes the duration.
func (s *PromSink) RecordQuery(res []coremetrics.QueryResult) error {
	for _, r := range res {
		outcome := "ok"
		if r.Reason != "" {
			outcome = r.Reason
		}
		s.queries.WithLabelValues(r.Kind, outcome).Inc()
		s.duration.WithLabelValues(r.Kind).Observe(r.Duration.Seconds())
	}
	return nil
}

// RecordBatteryState updates the SOC gauges.
func (s *PromSink) RecordBatteryState(samples []coremetrics.BatterySample) error {
	for _, b := range samples {
		s.socKWh.Set(b.SocKWh)
		if b.CapacityKWh > 0 {
			s.socPct.Set(100.0 * b.SocKWh / b.CapacityKWh)
		}
	}
	return nil
}
