package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"telemetry-service/internal/config"
	"telemetry-service/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// alertEvent mirrors the message the notification service consumes from
// the alert_notification topic.
type alertEvent struct {
	AlertID    string  `json:"alert_id"`
	AlertName  string  `json:"alert_name"`
	Severity   int     `json:"severity"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	MetricName string  `json:"metric_name"`
	Value      float64 `json:"value"`
	Threshold  float64 `json:"threshold"`
	SensorID   string  `json:"sensor_id"`
	Factory    string  `json:"factory"`
	Location   string  `json:"location"`
	Timestamp  string  `json:"timestamp"`
}

// Kafka publishes alerts as JSON events keyed by sensor id.
type Kafka struct {
	writer messageWriter
	newID  func() string
}

func NewKafka(cfg config.Config) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Broker),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &Kafka{writer: w, newID: func() string { return uuid.New().String() }}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Send(ctx context.Context, alert models.Alert) error {
	event := alertEvent{
		AlertID:    k.newID(),
		AlertName:  string(alert.Kind),
		Severity:   2,
		Status:     "firing",
		Message:    alert.Message,
		MetricName: alert.Kind.Metric(),
		Value:      alert.Value,
		Threshold:  alert.Threshold,
		SensorID:   alert.SensorID,
		Factory:    alert.Factory,
		Location:   alert.Location,
		Timestamp:  alert.Timestamp.Format(models.TimestampLayout),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}
	msg := kafka.Message{Key: []byte(alert.SensorID), Value: value}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish alert %s: %w", event.AlertID, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
