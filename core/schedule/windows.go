package schedule

import (
	"time"

	"github.com/aau-energy/microgrid/core/model"
)

// energyEps absorbs floating error when comparing accumulated energy against
// the requirement.
const energyEps = 1e-12

// DefaultMaxWindows caps the number of windows returned when the caller does
// not ask for a specific limit.
const DefaultMaxWindows = 10

// ReasonInsufficientData is returned when the series is too short to span a
// window.
const ReasonInsufficientData = "insufficient data"

// SearchParams describes an energy-window query over a fixed-step series.
type SearchParams struct {
	NeedKWh     float64
	StepMinutes int
	// MinPowerKW is an instantaneous floor applied to every step of a
	// candidate window. It is only honored when FloorEnabled is set.
	MinPowerKW   float64
	FloorEnabled bool
	MaxWindows   int
}

// SearchResult carries the located windows, or a machine-readable reason when
// none could be searched for. Insufficient data is not an error.
type SearchResult struct {
	Windows []model.Window
	Reason  string
}

// FindWindows locates, for each candidate start index, the earliest window
// delivering at least NeedKWh. The series must be fixed-step with non-negative
// power: non-negativity keeps the energy prefix sums monotonic, which is what
// lets both pointers advance monotonically. Signed net-power series are not
// supported and are rejected up front.
//
// Results are ordered by increasing start, not by quality, and capped at
// MaxWindows. A series shorter than two samples yields an empty result with a
// reason.
func FindWindows(s model.Series, p SearchParams) SearchResult {
	if len(s) < 2 {
		return SearchResult{Reason: ReasonInsufficientData}
	}
	for _, q := range s {
		if q.PowerKW < 0 {
			return SearchResult{Reason: "negative power sample: series must be non-negative"}
		}
	}
	maxWindows := p.MaxWindows
	if maxWindows <= 0 {
		maxWindows = DefaultMaxWindows
	}
	step := time.Duration(p.StepMinutes) * time.Minute
	stepH := step.Hours()

	n := len(s)
	pref := make([]float64, n+1)
	for i, q := range s {
		pref[i+1] = pref[i] + q.PowerKW*stepH
	}

	var out []model.Window
	// minIdx is a monotonic deque over sample indices in the current window
	// [i, j): values increase from front to back, so the front is the window
	// minimum. Both i and the minimal satisfying j only ever move forward.
	var minIdx []int
	j := 0
	for i := 0; i < n; i++ {
		for len(minIdx) > 0 && minIdx[0] < i {
			minIdx = minIdx[1:]
		}
		// A window spans at least one step.
		for j <= i && j < n {
			for len(minIdx) > 0 && s[minIdx[len(minIdx)-1]].PowerKW >= s[j].PowerKW {
				minIdx = minIdx[:len(minIdx)-1]
			}
			minIdx = append(minIdx, j)
			j++
		}
		for j < n && pref[j]-pref[i]+energyEps < p.NeedKWh {
			for len(minIdx) > 0 && s[minIdx[len(minIdx)-1]].PowerKW >= s[j].PowerKW {
				minIdx = minIdx[:len(minIdx)-1]
			}
			minIdx = append(minIdx, j)
			j++
		}
		if pref[j]-pref[i]+energyEps < p.NeedKWh {
			break // tail energy is insufficient for this and every later start
		}
		minKW := s[minIdx[0]].PowerKW
		if p.FloorEnabled && minKW+energyEps < p.MinPowerKW {
			continue
		}
		energy := pref[j] - pref[i]
		steps := j - i
		out = append(out, model.Window{
			Start:     s[i].TS,
			End:       s[j-1].TS.Add(step),
			EnergyKWh: energy,
			AvgKW:     energy / (float64(steps) * stepH),
			MinKW:     minKW,
			Steps:     steps,
		})
		if len(out) >= maxWindows {
			break
		}
	}
	return SearchResult{Windows: out}
}
