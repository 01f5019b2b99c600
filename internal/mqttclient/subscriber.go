package mqttclient

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

type Processor interface {
	Process(ctx context.Context, table string, in models.ReadingInput) (models.Reading, error)
}

type subscribeFunc func(topic string, qos byte, handler mqtt.MessageHandler) error

// Subscriber feeds device payloads published over MQTT into the ingestion
// pipeline, using the same body shape as POST /upload.
type Subscriber struct {
	subscribe subscribeFunc
	pipeline  Processor
	table     string
	topic     string
	timeout   time.Duration
	logger    *logging.Logger
}

func NewSubscriber(c *Client, pipeline Processor, topic, table string, logger *logging.Logger) *Subscriber {
	return &Subscriber{
		subscribe: c.Subscribe,
		pipeline:  pipeline,
		table:     table,
		topic:     topic,
		timeout:   10 * time.Second,
		logger:    logger,
	}
}

func (s *Subscriber) Start() error {
	if err := s.subscribe(s.topic, 1, s.handle); err != nil {
		return err
	}
	s.logger.Infof("MQTT ingestion subscribed to %s", s.topic)
	return nil
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	var in models.ReadingInput
	if err := json.Unmarshal(msg.Payload(), &in); err != nil {
		s.logger.Errorf("Invalid MQTT reading on %s: %v payload=%s", msg.Topic(), err, string(msg.Payload()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	r, err := s.pipeline.Process(ctx, s.table, in)
	if err != nil {
		s.logger.Errorf("MQTT reading on %s not stored: %v", msg.Topic(), err)
		return
	}
	s.logger.Debugf("Stored MQTT reading %d from sensor %s", r.ID, models.StringValue(r.SensorID))
}
