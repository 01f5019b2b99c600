package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/metrics"
	"telemetry-service/internal/models"
)

var errPanicked = errors.New("provider panicked")

// Provider delivers an alert to one external channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, alert models.Alert) error
}

// Service hands alerts to a worker pool so callers never wait on delivery.
type Service struct {
	logger        *logging.Logger
	config        config.Config
	tasks         chan models.Alert
	ctx           context.Context
	cancel        context.CancelFunc
	wg            *sync.WaitGroup
	providerFuncs map[string]func(context.Context, models.Alert) error
}

// New constructs a notification Service.
func New(logger *logging.Logger, cfg config.Config, providers ...Provider) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		logger:        logger,
		config:        cfg,
		tasks:         make(chan models.Alert, cfg.Notification.QueueSize),
		ctx:           ctx,
		cancel:        cancel,
		providerFuncs: make(map[string]func(context.Context, models.Alert) error, len(providers)),
	}
	for _, p := range providers {
		svc.providerFuncs[p.Name()] = p.Send
	}
	return svc
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.Notification.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop signals the workers to exit. Queued alerts that were not picked up are discarded.
func (s *Service) Stop() {
	s.cancel()
}

// Dispatch enqueues an alert without blocking.
func (s *Service) Dispatch(alert models.Alert) {
	select {
	case s.tasks <- alert:
		s.logger.Debugf("Queued alert: kind=%s sensor=%s", alert.Kind, alert.SensorID)
	default:
		metrics.NotificationsTotal.WithLabelValues("queue", "dropped").Inc()
		s.logger.Errorf("Queue full, dropping alert: kind=%s sensor=%s", alert.Kind, alert.SensorID)
	}
}

// worker processes alerts until context is cancelled.
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugf("Worker %d stopped", id)
			return
		case alert := <-s.tasks:
			s.deliver(alert)
		}
	}
}

// deliver makes one attempt per provider; failures are logged and dropped.
func (s *Service) deliver(alert models.Alert) {
	for name, send := range s.providerFuncs {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Notification.SendTimeout)
		start := time.Now()
		err := s.safeSend(ctx, name, send, alert)
		cancel()

		if err != nil {
			metrics.NotificationsTotal.WithLabelValues(name, "failed").Inc()
			s.logger.Errorf("Dispatch error via %s for sensor %s: %v", name, alert.SensorID, err)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(name, "sent").Inc()
		s.logger.Infof("Alert %s for sensor %s dispatched via %s in %v", alert.Kind, alert.SensorID, name, time.Since(start))
	}
}

func (s *Service) safeSend(ctx context.Context, name string, send func(context.Context, models.Alert) error, alert models.Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Provider %s panicked: %v", name, r)
			err = errPanicked
		}
	}()
	return send(ctx, alert)
}
