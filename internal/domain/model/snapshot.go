package model

import "time"

// Snapshot is the immutable output of one aggregation pass. Every analysis
// engine takes a Snapshot parameter and must not mutate it; a new ingest
// produces a new Snapshot rather than changing an existing one.
type Snapshot struct {
	Pins    []PinRecord
	Dates   DateSeries
	Records []RawRecord
	Events  []PolicyEvent
	BuiltAt time.Time
}

// Empty reports whether the snapshot holds no aggregated locations.
func (s Snapshot) Empty() bool {
	return len(s.Pins) == 0
}

// Pin returns the aggregate for a pincode, if present.
func (s Snapshot) Pin(pincode string) (PinRecord, bool) {
	for _, p := range s.Pins {
		if p.Pincode == pincode {
			return p, true
		}
	}
	return PinRecord{}, false
}
