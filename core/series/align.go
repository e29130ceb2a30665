package series

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/aau-energy/microgrid/core/model"
)

// CombinedPoint carries both source channels and their sum at one instant of
// the unified timeline, plus the net margin against a requested load.
type CombinedPoint struct {
	TS        time.Time `json:"ts"`
	WindKW    float64   `json:"wind_kw"`
	SolarKW   float64   `json:"solar_kw"`
	TotalKW   float64   `json:"total_kw"`
	NetKW     float64   `json:"net_kw"`
	MeetsLoad bool      `json:"meets_load"`
}

// Combine joins two independently sampled series onto the union of their
// timestamps. Each source contributes its nearest sample at every unified
// timestamp; exact timestamp equality across sources is not assumed. This is
// a deliberate nearest join, not an interpolation.
func Combine(wind, solar model.Series, loadKW float64) []CombinedPoint {
	grid := unifiedTimeline(wind, solar)
	points := make([]CombinedPoint, 0, len(grid))
	for _, t := range grid {
		w := NearestValue(wind, t, 0.0)
		s := NearestValue(solar, t, 0.0)
		tot := w + s
		points = append(points, CombinedPoint{
			TS:        t,
			WindKW:    w,
			SolarKW:   s,
			TotalKW:   tot,
			NetKW:     tot - loadKW,
			MeetsLoad: tot >= loadKW,
		})
	}
	return points
}

// TotalSeries projects combined points onto the total-power channel so the
// window search and run detector can consume them.
func TotalSeries(points []CombinedPoint) model.Series {
	out := make(model.Series, len(points))
	for i, p := range points {
		out[i] = model.Sample{TS: p.TS, PowerKW: p.TotalKW}
	}
	return out
}

// DaySummary aggregates per-channel energy for one UTC day.
type DaySummary struct {
	Day      string  `json:"day"`
	TotalKWh float64 `json:"kwh_total"`
	WindKWh  float64 `json:"kwh_wind"`
	SolarKWh float64 `json:"kwh_solar"`
}

// Summary holds total and per-day energy for a combined point list. Points are
// assumed hourly-ish, so one point contributes roughly its kW as kWh.
type Summary struct {
	TotalKWh float64      `json:"energy_total_kwh"`
	WindKWh  float64      `json:"energy_wind_kwh"`
	SolarKWh float64      `json:"energy_solar_kwh"`
	Days     []DaySummary `json:"days"`
}

// Summarize computes total and daily kWh per channel.
func Summarize(points []CombinedPoint) Summary {
	if len(points) == 0 {
		return Summary{Days: []DaySummary{}}
	}
	wind := make([]float64, len(points))
	solar := make([]float64, len(points))
	byDay := make(map[string]*DaySummary)
	for i, p := range points {
		wind[i] = p.WindKW
		solar[i] = p.SolarKW
		day := p.TS.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DaySummary{Day: day}
			byDay[day] = d
		}
		d.WindKWh += p.WindKW
		d.SolarKWh += p.SolarKW
		d.TotalKWh += p.WindKW + p.SolarKW
	}
	days := make([]DaySummary, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	eWind := floats.Sum(wind)
	eSolar := floats.Sum(solar)
	return Summary{
		TotalKWh: eWind + eSolar,
		WindKWh:  eWind,
		SolarKWh: eSolar,
		Days:     days,
	}
}

func unifiedTimeline(a, b model.Series) []time.Time {
	seen := make(map[int64]struct{}, len(a)+len(b))
	grid := make([]time.Time, 0, len(a)+len(b))
	for _, s := range [2]model.Series{a, b} {
		for _, p := range s {
			k := p.TS.UnixNano()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			grid = append(grid, p.TS)
		}
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Before(grid[j]) })
	return grid
}
