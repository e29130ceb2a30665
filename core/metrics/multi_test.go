package metrics

import "testing"

type countSink struct {
	count int
}

func (r *countSink) RecordQuery([]QueryResult) error          { r.count++; return nil }
func (r *countSink) RecordBatteryState([]BatterySample) error { r.count++; return nil }

func TestMultiSink(t *testing.T) {
	s1 := &countSink{}
	s2 := &countSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordQuery(nil); err != nil {
		t.Fatalf("record query: %v", err)
	}
	if err := m.RecordBatteryState(nil); err != nil {
		t.Fatalf("record battery state: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
}
