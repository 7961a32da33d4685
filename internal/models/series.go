package models

import (
	"encoding/json"
	"time"
)

// SeriesPoint is one (absolute timestamp, value) pair of a channel's time
// series. A non-empty series is non-decreasing in time and always ends with
// a sentinel point whose value repeats the last real value and whose
// timestamp is the maximum timestamp observed across the whole file, so a
// step plot extends to the end of the recording.
type SeriesPoint struct {
	Time  time.Time
	Value Value
}

// MarshalJSON emits the compact [unixMillis, value] pair the frontend plots.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Time.UnixMilli(), p.Value.Any()})
}

// TimeRange represents a wall-clock time window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
