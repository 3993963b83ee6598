package models

import "time"

// SeriesPoint is one day of a normalized market series. Value is nil when
// the provider had no number for that day.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// Mean returns the arithmetic mean of the non-nil values in the series,
// or nil when no numeric values exist.
func Mean(series []SeriesPoint) *float64 {
	var sum float64
	var n int
	for _, p := range series {
		if p.Value == nil {
			continue
		}
		sum += *p.Value
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// Day truncates a timestamp to its UTC calendar day.
func Day(ts time.Time) time.Time {
	utc := ts.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
