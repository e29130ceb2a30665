package schedule

import (
	"gonum.org/v1/gonum/stat"

	"github.com/aau-energy/microgrid/core/model"
	"github.com/aau-energy/microgrid/core/series"
)

// MarginParams configures the availability-run scan. When Load is non-empty
// the load at each generation sample is taken from it by nearest lookup;
// otherwise the constant LoadKW applies.
type MarginParams struct {
	LoadKW          float64
	Load            model.Series
	MinBlockMinutes int
}

// GreenWindows scans the generation series in time order and returns every
// contiguous run with margin >= 0 lasting at least MinBlockMinutes. Run
// duration is wall-clock whole minutes; a run still open at the end of the
// series is flushed using the final timestamp. An empty series yields no
// windows.
func GreenWindows(gen model.Series, p MarginParams) []model.GreenWindow {
	if len(gen) == 0 {
		return nil
	}
	var out []model.GreenWindow
	var run []float64
	var start int
	open := false

	flush := func(end int) {
		w := model.GreenWindow{Start: gen[start].TS, End: gen[end].TS}
		if w.Minutes() >= p.MinBlockMinutes {
			w.AvgMarginKW = stat.Mean(run, nil)
			out = append(out, w)
		}
		open = false
		run = run[:0]
	}

	for i, g := range gen {
		load := p.LoadKW
		if len(p.Load) > 0 {
			load = series.NearestValue(p.Load, g.TS, p.LoadKW)
		}
		margin := g.PowerKW - load
		if margin >= 0 {
			if !open {
				open = true
				start = i
			}
			run = append(run, margin)
			continue
		}
		if open {
			flush(i)
		}
	}
	if open {
		flush(len(gen) - 1)
	}
	return out
}
