package alerting

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"telemetry-service/internal/models"
)

// EvaluationError reports a threshold that could not be parsed.
type EvaluationError struct {
	Field string
	Value string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("invalid %s threshold %q: %v", e.Field, e.Value, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Evaluate checks a reading against the warning thresholds. Temperature is
// checked before humidity and both limits are inclusive. If either threshold
// is malformed no alerts are returned.
func Evaluate(r models.Reading, th models.Thresholds) ([]models.Alert, error) {
	tempLimit, err := parseThreshold("temperature", th.TempWarning)
	if err != nil {
		return nil, err
	}
	humLimit, err := parseThreshold("humidity", th.HumWarning)
	if err != nil {
		return nil, err
	}

	var alerts []models.Alert
	if r.Temperature != nil && *r.Temperature >= tempLimit {
		alerts = append(alerts, newAlert(models.HighTemperature, r, *r.Temperature, tempLimit))
	}
	if r.Humidity != nil && *r.Humidity >= humLimit {
		alerts = append(alerts, newAlert(models.HighHumidity, r, *r.Humidity, humLimit))
	}
	return alerts, nil
}

func parseThreshold(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &EvaluationError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func newAlert(kind models.AlertKind, r models.Reading, value, threshold float64) models.Alert {
	a := models.Alert{
		Kind:      kind,
		SensorID:  models.StringValue(r.SensorID),
		Factory:   models.StringValue(r.Factory),
		Location:  models.StringValue(r.Location),
		Value:     value,
		Threshold: threshold,
		Timestamp: r.Timestamp,
	}
	a.Message = Render(a)
	return a
}

// Render formats an alert as Telegram HTML.
func Render(a models.Alert) string {
	title, label, unit := "HIGH TEMPERATURE WARNING", "Temperature", "°C"
	if a.Kind == models.HighHumidity {
		title, label, unit = "HIGH HUMIDITY WARNING", "Humidity", "%"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>⚠️ %s</b>\n", title)
	fmt.Fprintf(&b, "<b>Time:</b> %s\n", a.Timestamp.Format(models.TimestampLayout))
	fmt.Fprintf(&b, "<b>%s:</b> %s%s (limit %s%s)\n", label,
		strconv.FormatFloat(a.Value, 'f', -1, 64), unit,
		strconv.FormatFloat(a.Threshold, 'f', -1, 64), unit)
	fmt.Fprintf(&b, "<b>Factory:</b> %s\n", html.EscapeString(a.Factory))
	fmt.Fprintf(&b, "<b>Location:</b> %s\n", html.EscapeString(a.Location))
	fmt.Fprintf(&b, "<b>Sensor:</b> %s", html.EscapeString(a.SensorID))
	return b.String()
}
