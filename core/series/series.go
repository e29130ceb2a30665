package series

import (
	"sort"
	"time"

	"github.com/aau-energy/microgrid/core/model"
)

// timeEps guards against emitting a grid point that coincides with the next
// anchor because of sub-microsecond rounding.
const timeEps = time.Microsecond

// NearestValue returns the power of the sample whose timestamp is closest to
// t, with ties broken toward the earlier sample. Timestamps outside the series
// clamp to the nearest endpoint. An empty series yields def.
func NearestValue(s model.Series, t time.Time, def float64) float64 {
	if len(s) == 0 {
		return def
	}
	i := sort.Search(len(s), func(k int) bool { return !s[k].TS.Before(t) })
	if i <= 0 {
		return s[0].PowerKW
	}
	if i >= len(s) {
		return s[len(s)-1].PowerKW
	}
	if t.Sub(s[i-1].TS) <= s[i].TS.Sub(t) {
		return s[i-1].PowerKW
	}
	return s[i].PowerKW
}

// InterpolateToGrid resamples the series to fixed step spacing using
// piecewise-linear interpolation between consecutive samples. Every original
// sample is preserved as an anchor, so the first and last points of the input
// always appear in the output exactly. Consecutive pairs with non-increasing
// timestamps are skipped. An empty input yields an empty output.
func InterpolateToGrid(s model.Series, step time.Duration) model.Series {
	if len(s) == 0 || step <= 0 {
		return nil
	}
	out := make(model.Series, 0, len(s))
	out = append(out, s[0])
	for i := 0; i < len(s)-1; i++ {
		t0, v0 := s[i].TS, s[i].PowerKW
		t1, v1 := s[i+1].TS, s[i+1].PowerKW
		if !t1.After(t0) {
			continue
		}
		span := t1.Sub(t0)
		for t := t0.Add(step); t.Before(t1.Add(-timeEps)); t = t.Add(step) {
			a := float64(t.Sub(t0)) / float64(span)
			out = append(out, model.Sample{TS: t, PowerKW: v0 + a*(v1-v0)})
		}
		out = append(out, s[i+1])
	}
	// Keep the final sample even when the trailing pair was degenerate.
	if last := s[len(s)-1]; out[len(out)-1].TS.Before(last.TS) {
		out = append(out, last)
	}
	return out
}

// IntegrateEnergyKWh computes the trapezoidal integral of the series (kW over
// elapsed hours). Series shorter than two points integrate to zero; segments
// with non-positive elapsed time are skipped.
func IntegrateEnergyKWh(s model.Series) float64 {
	if len(s) < 2 {
		return 0.0
	}
	total := 0.0
	for i := 0; i < len(s)-1; i++ {
		dh := s[i+1].TS.Sub(s[i].TS).Hours()
		if dh <= 0 {
			continue
		}
		total += 0.5 * (s[i].PowerKW + s[i+1].PowerKW) * dh
	}
	return total
}
