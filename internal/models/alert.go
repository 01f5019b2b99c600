package models

import "time"

type AlertKind string

const (
	HighTemperature AlertKind = "HighTemperature"
	HighHumidity    AlertKind = "HighHumidity"
)

// Metric returns the reading field the alert was raised on.
func (k AlertKind) Metric() string {
	switch k {
	case HighTemperature:
		return "temperature"
	case HighHumidity:
		return "humidity"
	default:
		return ""
	}
}

// Alert is a transient threshold violation derived from one Reading.
// It is never persisted.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	SensorID  string    `json:"sensor_id"`
	Factory   string    `json:"factory"`
	Location  string    `json:"location"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"` // HTML, ready for the messaging channel
}

// Thresholds are the raw warning limits from configuration.
type Thresholds struct {
	TempWarning string
	HumWarning  string
}
