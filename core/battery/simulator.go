package battery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aau-energy/microgrid/core/model"
)

const (
	// socEps is the threshold below which the battery counts as depleted.
	socEps = 1e-6
	// targetEps absorbs floating error when comparing SOC against a target.
	targetEps = 1e-9
)

// Simulator is a deterministic stepwise battery model. It is not safe for
// concurrent use; callers who share a live instance must go through Manager
// and run speculative simulations on a Clone.
type Simulator struct {
	capacity     float64
	soc          float64
	chargeEff    float64
	dischargeEff float64
	step         time.Duration
}

// NewSimulator validates the physical parameters and returns a simulator with
// the initial SOC clamped into [0, capacity].
func NewSimulator(capacityKWh, socKWh, chargeEff, dischargeEff float64, step time.Duration) (*Simulator, error) {
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %g", capacityKWh)
	}
	if chargeEff <= 0 || chargeEff > 1 {
		return nil, fmt.Errorf("charge efficiency must be in (0,1], got %g", chargeEff)
	}
	if dischargeEff <= 0 || dischargeEff > 1 {
		return nil, fmt.Errorf("discharge efficiency must be in (0,1], got %g", dischargeEff)
	}
	if step <= 0 {
		return nil, fmt.Errorf("simulation step must be positive, got %v", step)
	}
	return &Simulator{
		capacity:     capacityKWh,
		soc:          math.Max(0, math.Min(socKWh, capacityKWh)),
		chargeEff:    chargeEff,
		dischargeEff: dischargeEff,
		step:         step,
	}, nil
}

// Clone returns an independent copy for what-if projections.
func (b *Simulator) Clone() *Simulator {
	cp := *b
	return &cp
}

// Soc returns the current state of charge in kWh.
func (b *Simulator) Soc() float64 { return b.soc }

// Capacity returns the battery capacity in kWh.
func (b *Simulator) Capacity() float64 { return b.capacity }

// SetSoc overwrites the state of charge, clamped into [0, capacity].
func (b *Simulator) SetSoc(kwh float64) {
	b.soc = math.Max(0, math.Min(kwh, b.capacity))
}

// Status reports the state of charge as of the given instant.
func (b *Simulator) Status(asOf time.Time) model.BatteryStatus {
	return model.BatteryStatus{
		NowSocKWh:   b.soc,
		CapacityKWh: b.capacity,
		SocPct:      100.0 * b.soc / b.capacity,
		AsOf:        asOf,
	}
}

// Step advances the state by dt: charging is applied first (capped at
// capacity), discharge second (floored at zero). The charge-then-discharge
// order within a step is part of the model and must not be reordered.
func (b *Simulator) Step(genKW, loadKW float64, dt time.Duration) {
	h := dt.Hours()
	b.soc = math.Min(b.capacity, b.soc+math.Max(0, genKW)*b.chargeEff*h)
	b.soc = math.Max(0, b.soc-math.Max(0, loadKW)*h/b.dischargeEff)
}

// SimulateRuntime steps forward under a constant load, using the forecast as
// a staircase (latest sample at or before the simulated time, never
// interpolated), until the battery depletes or the forecast is exhausted.
// Runtime is floor-divided to whole minutes. The receiver is mutated; run on
// a Clone to keep the live state intact.
func (b *Simulator) SimulateRuntime(forecast model.Series, loadKW float64, start time.Time) model.RuntimeEstimate {
	est := model.RuntimeEstimate{LoadKW: loadKW, StartSocKWh: b.soc, EndTime: start}
	if len(forecast) == 0 {
		est.Depleted = b.soc <= socEps
		return est
	}
	i, t := 0, start
	for {
		for i+1 < len(forecast) && !forecast[i+1].TS.After(t) {
			i++
		}
		b.Step(forecast[i].PowerKW, loadKW, b.step)
		t = t.Add(b.step)
		if b.soc <= socEps {
			est.RuntimeMinutes = int(t.Sub(start).Seconds()) / 60
			est.EndTime = t
			est.Depleted = true
			return est
		}
		if i >= len(forecast)-1 {
			est.RuntimeMinutes = int(t.Sub(start).Seconds()) / 60
			est.EndTime = t
			return est
		}
	}
}

// SimulateUntilTargets tracks several ascending SOC targets through one
// forward run under a constant base load. Targets at or below the current SOC
// are stamped with the start time immediately; targets still unmet when the
// forecast runs out come back unreachable. The receiver is mutated; run on a
// Clone to keep the live state intact.
func (b *Simulator) SimulateUntilTargets(forecast model.Series, targetsKWh []float64, baseLoadKW float64, start time.Time) map[float64]model.SocTargetETA {
	reached := make(map[float64]model.SocTargetETA, len(targetsKWh))
	var remaining []float64
	seen := make(map[float64]struct{})
	for _, tr := range targetsKWh {
		tr = math.Round(tr*1e6) / 1e6
		if _, ok := seen[tr]; ok {
			continue
		}
		seen[tr] = struct{}{}
		if tr <= b.soc+targetEps {
			eta := start
			reached[tr] = model.SocTargetETA{TargetKWh: tr, ETA: &eta, Reachable: true}
			continue
		}
		remaining = append(remaining, tr)
	}
	sort.Float64s(remaining)

	i, t := 0, start
	for len(remaining) > 0 && len(forecast) > 0 {
		for i+1 < len(forecast) && !forecast[i+1].TS.After(t) {
			i++
		}
		b.Step(forecast[i].PowerKW, baseLoadKW, b.step)
		t = t.Add(b.step)

		for len(remaining) > 0 && b.soc >= remaining[0]-targetEps {
			eta := t
			reached[remaining[0]] = model.SocTargetETA{TargetKWh: remaining[0], ETA: &eta, Reachable: true}
			remaining = remaining[1:]
		}
		if i >= len(forecast)-1 {
			break
		}
	}
	for _, tr := range remaining {
		reached[tr] = model.SocTargetETA{TargetKWh: tr, Reachable: false}
	}
	return reached
}
