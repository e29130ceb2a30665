package model

import "time"

// Window is a contiguous span of a fixed-step series that satisfies an
// energy requirement. Windows are immutable result values ordered by start.
type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	EnergyKWh float64   `json:"kwh"`
	AvgKW     float64   `json:"avg_kw"`
	MinKW     float64   `json:"min_kw"`
	Steps     int       `json:"steps"`
}

// GreenWindow is a contiguous run where generation covered the load.
type GreenWindow struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AvgMarginKW float64   `json:"avg_margin_kw"` // avg (generation_kw - load_kw) over the run
}

// Minutes returns the wall-clock run length in whole minutes.
func (w GreenWindow) Minutes() int {
	return int(w.End.Sub(w.Start).Minutes())
}
