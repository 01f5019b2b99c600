package models

import "time"

// TimestampLayout is the second-precision layout used when rendering reading times.
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is one telemetry sample. Absent JSON fields decode to nil and are
// stored as NULL.
type Reading struct {
	ID          int64     `json:"id"`
	SensorID    *string   `json:"sensor_id"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	Sound       *float64  `json:"sound"`
	Light       *float64  `json:"light"`
	Factory     *string   `json:"factory"`
	Location    *string   `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReadingInput is the body a device submits; timestamp and id are never
// taken from the client.
type ReadingInput struct {
	SensorID    *string  `json:"sensor_id"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Sound       *float64 `json:"sound"`
	Light       *float64 `json:"light"`
	Factory     *string  `json:"factory"`
	Location    *string  `json:"location"`
}

// Reading stamps the input with the receipt time, truncated to seconds.
func (in ReadingInput) Reading(receivedAt time.Time) Reading {
	return Reading{
		SensorID:    in.SensorID,
		Temperature: in.Temperature,
		Humidity:    in.Humidity,
		Sound:       in.Sound,
		Light:       in.Light,
		Factory:     in.Factory,
		Location:    in.Location,
		Timestamp:   receivedAt.Truncate(time.Second),
	}
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
