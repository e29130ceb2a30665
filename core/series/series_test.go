package series

import (
	"math"
	"testing"
	"time"

	"github.com/aau-energy/microgrid/core/model"
)

func ts(minutes int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func TestNearestValue_Empty(t *testing.T) {
	if got := NearestValue(nil, ts(0), 42.0); got != 42.0 {
		t.Fatalf("expected default 42.0, got %g", got)
	}
}

func TestNearestValue_TieBreaksEarlier(t *testing.T) {
	s := model.Series{
		{TS: ts(0), PowerKW: 1},
		{TS: ts(60), PowerKW: 2},
	}
	// 00:30 is equidistant; the earlier sample wins.
	if got := NearestValue(s, ts(30), 0); got != 1 {
		t.Fatalf("expected earlier sample on tie, got %g", got)
	}
	if got := NearestValue(s, ts(31), 0); got != 2 {
		t.Fatalf("expected later sample, got %g", got)
	}
}

func TestNearestValue_ClampsToEndpoints(t *testing.T) {
	s := model.Series{
		{TS: ts(60), PowerKW: 3},
		{TS: ts(120), PowerKW: 7},
	}
	if got := NearestValue(s, ts(0), 0); got != 3 {
		t.Fatalf("expected clamp to first, got %g", got)
	}
	if got := NearestValue(s, ts(600), 0); got != 7 {
		t.Fatalf("expected clamp to last, got %g", got)
	}
}

func TestInterpolateToGrid_HalfwayValue(t *testing.T) {
	s := model.Series{
		{TS: ts(0), PowerKW: 0},
		{TS: ts(60), PowerKW: 10},
	}
	out := InterpolateToGrid(s, 30*time.Minute)
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}
	if !out[1].TS.Equal(ts(30)) || math.Abs(out[1].PowerKW-5.0) > 1e-9 {
		t.Fatalf("expected 5 kW at 00:30, got %g at %v", out[1].PowerKW, out[1].TS)
	}
}

func TestInterpolateToGrid_PreservesEndpoints(t *testing.T) {
	s := model.Series{
		{TS: ts(0), PowerKW: 1.25},
		{TS: ts(47), PowerKW: 6.5}, // off-grid interior anchor
		{TS: ts(95), PowerKW: 2.75},
	}
	out := InterpolateToGrid(s, 10*time.Minute)
	if len(out) == 0 {
		t.Fatal("empty output")
	}
	first, last := out[0], out[len(out)-1]
	if !first.TS.Equal(s[0].TS) || first.PowerKW != s[0].PowerKW {
		t.Fatalf("first sample not preserved: %+v", first)
	}
	if !last.TS.Equal(s[2].TS) || last.PowerKW != s[2].PowerKW {
		t.Fatalf("last sample not preserved: %+v", last)
	}
}

func TestInterpolateToGrid_SkipsDegeneratePairs(t *testing.T) {
	s := model.Series{
		{TS: ts(0), PowerKW: 1},
		{TS: ts(0), PowerKW: 9}, // duplicate timestamp
		{TS: ts(20), PowerKW: 3},
	}
	out := InterpolateToGrid(s, 10*time.Minute)
	for i := 1; i < len(out); i++ {
		if !out[i].TS.After(out[i-1].TS) {
			t.Fatalf("timestamps not strictly increasing at %d: %v", i, out[i].TS)
		}
	}
	if !out[len(out)-1].TS.Equal(ts(20)) {
		t.Fatalf("last anchor missing, got %v", out[len(out)-1].TS)
	}
}

func TestInterpolateToGrid_Empty(t *testing.T) {
	if out := InterpolateToGrid(nil, 5*time.Minute); len(out) != 0 {
		t.Fatalf("expected empty output, got %d points", len(out))
	}
}

func TestIntegrateEnergyKWh_Ramp(t *testing.T) {
	// Linear ramp 0 -> 8 kW over 2 hours integrates to 8*2/2 = 8 kWh.
	s := model.Series{
		{TS: ts(0), PowerKW: 0},
		{TS: ts(60), PowerKW: 4},
		{TS: ts(120), PowerKW: 8},
	}
	if got := IntegrateEnergyKWh(s); math.Abs(got-8.0) > 1e-9 {
		t.Fatalf("expected 8 kWh, got %g", got)
	}
}

func TestIntegrateEnergyKWh_ShortSeries(t *testing.T) {
	if got := IntegrateEnergyKWh(model.Series{{TS: ts(0), PowerKW: 5}}); got != 0 {
		t.Fatalf("expected 0 for single sample, got %g", got)
	}
	if got := IntegrateEnergyKWh(nil); got != 0 {
		t.Fatalf("expected 0 for empty series, got %g", got)
	}
}

func TestIntegrateEnergyKWh_SkipsNonPositiveSegments(t *testing.T) {
	s := model.Series{
		{TS: ts(60), PowerKW: 4},
		{TS: ts(60), PowerKW: 400},
		{TS: ts(120), PowerKW: 4},
	}
	if got := IntegrateEnergyKWh(s); math.Abs(got-202.0) > 1e-9 {
		// only the (400+4)/2 * 1h segment counts
		t.Fatalf("expected 202 kWh, got %g", got)
	}
}
