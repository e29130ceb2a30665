package battery

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aau-energy/microgrid/core/events"
	"github.com/aau-energy/microgrid/core/logger"
	"github.com/aau-energy/microgrid/core/metrics"
	"github.com/aau-energy/microgrid/core/model"
	"github.com/aau-energy/microgrid/internal/eventbus"
)

// Manager owns the live battery instance. Every read-only projection runs on
// an independent copy of the state; SetSoc is the only mutation and is
// serialized by the mutex, so concurrent queries can never corrupt the live
// instance.
type Manager struct {
	mu      sync.Mutex
	sim     *Simulator
	bus     *eventbus.TypedBus[events.SocUpdated]
	metrics metrics.MetricsSink
	log     logger.Logger
}

// NewManager wraps the live simulator. bus and sink may be nil.
func NewManager(sim *Simulator, bus *eventbus.TypedBus[events.SocUpdated], sink metrics.MetricsSink, log logger.Logger) *Manager {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Manager{sim: sim, bus: bus, metrics: sink, log: log}
}

// Status reports the live state as of the given instant.
func (m *Manager) Status(asOf time.Time) model.BatteryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.Status(asOf)
}

// SetSoc is the single-writer commit path. The value must lie within
// [0, capacity]; out-of-range values are rejected rather than clamped because
// a commit states a measured fact, not a simulation input.
func (m *Manager) SetSoc(kwh float64, asOf time.Time) (model.BatteryStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kwh < 0 || kwh > m.sim.Capacity() {
		return model.BatteryStatus{}, fmt.Errorf("soc %g kWh outside [0, %g]", kwh, m.sim.Capacity())
	}
	old := m.sim.Soc()
	m.sim.SetSoc(kwh)
	status := m.sim.Status(asOf)
	m.log.Infof("battery soc set to %.3f kWh (was %.3f)", kwh, old)
	if m.bus != nil {
		m.bus.Publish(events.SocUpdated{
			OldSocKWh:   old,
			NewSocKWh:   kwh,
			CapacityKWh: m.sim.Capacity(),
			At:          asOf,
		})
	}
	if err := m.metrics.RecordBatteryState([]metrics.BatterySample{{
		SocKWh:      status.NowSocKWh,
		CapacityKWh: status.CapacityKWh,
		At:          asOf,
	}}); err != nil {
		m.log.Warnf("record battery state: %v", err)
	}
	return status, nil
}

// EstimateRuntime answers a runtime-to-depletion query on a copy of the live
// state. The live instance is never mutated.
func (m *Manager) EstimateRuntime(forecast model.Series, loadKW float64, start time.Time) (model.RuntimeEstimate, error) {
	if loadKW < 0 {
		return model.RuntimeEstimate{}, fmt.Errorf("load must be non-negative, got %g", loadKW)
	}
	m.mu.Lock()
	sim := m.sim.Clone()
	m.mu.Unlock()
	return sim.SimulateRuntime(forecast, loadKW, start), nil
}

// TargetETAs answers time-to-target-SOC queries on a copy of the live state,
// returning results ordered by ascending target.
func (m *Manager) TargetETAs(forecast model.Series, targetsKWh []float64, baseLoadKW float64, start time.Time) ([]model.SocTargetETA, error) {
	if baseLoadKW < 0 {
		return nil, fmt.Errorf("base load must be non-negative, got %g", baseLoadKW)
	}
	m.mu.Lock()
	sim := m.sim.Clone()
	m.mu.Unlock()
	for _, tr := range targetsKWh {
		if tr < 0 || tr > sim.Capacity() {
			return nil, fmt.Errorf("target %g kWh outside [0, %g]", tr, sim.Capacity())
		}
	}
	reached := sim.SimulateUntilTargets(forecast, targetsKWh, baseLoadKW, start)
	out := make([]model.SocTargetETA, 0, len(reached))
	for _, eta := range reached {
		out = append(out, eta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetKWh < out[j].TargetKWh })
	return out, nil
}
