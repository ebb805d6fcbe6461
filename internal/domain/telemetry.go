package domain

import "time"

// Reading is one raw telemetry row as captured upstream. The capture side
// deduplicates: a row is stored only when an inverter's output changed, so
// gaps in the stream mean "value held", not "data missing".
type Reading struct {
	ReportedAt   time.Time `json:"reported_at"`
	SerialNumber int64     `json:"serial_number"`
	Watts        int64     `json:"watts"`
}

// Sample is one point of a reconstructed device-day series.
// OffsetSecs is seconds past local midnight, in [0, 86400).
type Sample struct {
	OffsetSecs int64 `json:"offset_secs"`
	Watts      int64 `json:"watts"`
}

// DeviceDay is one inverter's reconstructed series for one calendar day.
// Offsets are strictly increasing. The first and last samples are real
// readings, never synthesized gap fillers.
type DeviceDay struct {
	Date         time.Time `json:"date"`
	SerialNumber int64     `json:"serial_number"`
	Samples      []Sample  `json:"samples"`
}

// DayBatch holds everything reconstructed for one calendar day, keyed by
// inverter serial number.
type DayBatch struct {
	Date   time.Time
	Series map[int64][]Sample
}

// Offset returns seconds past midnight for a report timestamp.
func Offset(t time.Time) int64 {
	return int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

// Midnight truncates a timestamp to the start of its calendar day,
// preserving the location the reading was reported in.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
