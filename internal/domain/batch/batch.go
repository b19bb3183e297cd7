package batch

import "time"

// Batch names. They double as the member's preferred slot and the slot an
// attendance record is filed under.
const (
	Morning = "Morning"
	Evening = "Evening"
	Ladies  = "Ladies"
)

// All lists the batches in display order.
var All = []string{Morning, Evening, Ladies}

// For maps a civil-zone time of day to its batch.
// Hours 4-11 are Morning, 17-23 are Ladies, everything else (0-3, 12-16) is Evening.
// PRE: t is already expressed in the gym's civil zone
func For(t time.Time) string {
	return ForHour(t.Hour())
}

// ForHour classifies an hour in [0,23].
func ForHour(h int) string {
	switch {
	case h >= 4 && h <= 11:
		return Morning
	case h >= 17 && h <= 23:
		return Ladies
	default:
		return Evening
	}
}

// IsValid reports whether name is one of the three batches.
func IsValid(name string) bool {
	return name == Morning || name == Evening || name == Ladies
}
