// Package events defines event types exchanged on the internal event bus.
package events

import "time"

// SocUpdated is published whenever the live battery state of charge is
// overwritten through the manager's single-writer path.
type SocUpdated struct {
	OldSocKWh   float64
	NewSocKWh   float64
	CapacityKWh float64
	At          time.Time
}
