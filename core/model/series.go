package model

import (
	"sort"
	"time"
)

// Sample is a single power observation on one channel.
type Sample struct {
	TS      time.Time `json:"ts"`
	PowerKW float64   `json:"power_kw"`
}

// Series is an ordered sequence of samples. Components assume strictly
// increasing timestamps; callers are responsible for sorting, and SortCopy
// gives them a cheap way to do it defensively since inputs arrive from
// independent sources.
type Series []Sample

// IsSorted reports whether timestamps are strictly increasing.
func (s Series) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].TS.After(s[i-1].TS) {
			return false
		}
	}
	return true
}

// SortCopy returns a sorted copy of the series with duplicate timestamps
// collapsed (the last sample for a timestamp wins). The receiver is never
// mutated.
func (s Series) SortCopy() Series {
	if s.IsSorted() {
		cp := make(Series, len(s))
		copy(cp, s)
		return cp
	}
	cp := make(Series, len(s))
	copy(cp, s)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].TS.Before(cp[j].TS) })
	out := cp[:0]
	for _, p := range cp {
		if n := len(out); n > 0 && out[n-1].TS.Equal(p.TS) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// Start returns the first timestamp, or the zero time for an empty series.
func (s Series) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].TS
}

// End returns the last timestamp, or the zero time for an empty series.
func (s Series) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].TS
}
