package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordQuery forwards the records to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordQuery(res []QueryResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordQuery(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatteryState forwards the samples to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordBatteryState(samples []BatterySample) error {
	for _, s := range m.Sinks {
		if err := s.RecordBatteryState(samples); err != nil {
			return err
		}
	}
	return nil
}
