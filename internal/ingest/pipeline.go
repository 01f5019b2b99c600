package ingest

import (
	"context"
	"time"

	"telemetry-service/internal/alerting"
	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/metrics"
	"telemetry-service/internal/models"
)

type Store interface {
	StoreReading(ctx context.Context, table string, r *models.Reading) error
}

type Dispatcher interface {
	Dispatch(alert models.Alert)
}

// Publisher receives readings and alerts for the live feed.
type Publisher interface {
	Publish(kind string, payload interface{})
}

// Pipeline stores a reading, evaluates it and hands any alert to the
// dispatcher. HTTP and MQTT ingestion share it.
type Pipeline struct {
	store      Store
	dispatcher Dispatcher
	feed       Publisher
	thresholds models.Thresholds
	logger     *logging.Logger
	now        func() time.Time
}

func New(store Store, dispatcher Dispatcher, feed Publisher, cfg config.Config, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		dispatcher: dispatcher,
		feed:       feed,
		thresholds: models.Thresholds{
			TempWarning: cfg.Thresholds.TempWarning,
			HumWarning:  cfg.Thresholds.HumWarning,
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the receipt-time clock.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Process stamps, stores and evaluates one reading. Evaluation runs even
// when the store fails; the returned error is the storage error, if any.
func (p *Pipeline) Process(ctx context.Context, table string, in models.ReadingInput) (models.Reading, error) {
	r := in.Reading(p.now())

	storeErr := p.store.StoreReading(ctx, table, &r)
	if storeErr != nil {
		metrics.ReadingsTotal.WithLabelValues(table, "failed").Inc()
		p.logger.Errorf("Store reading from sensor %s into %s failed: %v", models.StringValue(r.SensorID), table, storeErr)
	} else {
		metrics.ReadingsTotal.WithLabelValues(table, "stored").Inc()
		p.logger.Debugf("Stored reading %d from sensor %s into %s", r.ID, models.StringValue(r.SensorID), table)
		if p.feed != nil {
			p.feed.Publish("reading", r)
		}
	}

	alerts, err := alerting.Evaluate(r, p.thresholds)
	if err != nil {
		metrics.EvaluationErrorsTotal.Inc()
		p.logger.Warnf("Threshold evaluation skipped: %v", err)
		return r, storeErr
	}
	for _, a := range alerts {
		metrics.AlertsTotal.WithLabelValues(string(a.Kind)).Inc()
		p.logger.Infof("Alert %s for sensor %s: value %.2f >= %.2f", a.Kind, a.SensorID, a.Value, a.Threshold)
		p.dispatcher.Dispatch(a)
		if p.feed != nil {
			p.feed.Publish("alert", a)
		}
	}
	return r, storeErr
}
