package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"telemetry-service/internal/api"
	"telemetry-service/internal/config"
	"telemetry-service/internal/db"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/mqttclient"
	"telemetry-service/internal/notification"
	"telemetry-service/internal/providers"
	"telemetry-service/internal/stream"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatal("Logger init failed:", err)
	}
	defer logger.Close()

	// Connect to DB
	dbConn, err := db.New(context.Background(), cfg.ConnString())
	if err != nil {
		logger.Fatalf("DB connect failed: %v", err)
	}
	defer func(dbConn *db.DB) {
		if err := dbConn.Close(); err != nil {
			logger.Errorf("DB close failed: %v", err)
		} else {
			logger.Info("DB connection closed")
		}
	}(dbConn)

	// Notification providers
	var alertProviders []notification.Provider
	if cfg.TelegramEnabled() {
		tg, err := providers.NewTelegram(cfg)
		if err != nil {
			logger.Fatalf("Telegram init failed: %v", err)
		}
		alertProviders = append(alertProviders, tg)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, Telegram alerts disabled")
	}
	var kafkaProvider *providers.Kafka
	if cfg.Kafka.Broker != "" {
		kafkaProvider = providers.NewKafka(cfg)
		alertProviders = append(alertProviders, kafkaProvider)
		logger.Infof("Publishing alerts to Kafka topic %s", cfg.Kafka.Topic)
	}

	svc := notification.New(logger, cfg, alertProviders...)
	var wg sync.WaitGroup
	svc.Start(&wg)

	hub := stream.NewHub(logger)
	go hub.Run()

	pipeline := ingest.New(dbConn, svc, hub, cfg, logger)

	// Optional MQTT ingestion
	var mqttClient *mqttclient.Client
	if cfg.MQTT.Broker != "" {
		mqttClient, err = mqttclient.New(mqttclient.Options{BrokerURL: cfg.MQTT.Broker, ClientID: cfg.MQTT.ClientID})
		if err != nil {
			logger.Fatalf("MQTT connect failed: %v", err)
		}
		sub := mqttclient.NewSubscriber(mqttClient, pipeline, cfg.MQTT.Topic, cfg.Datasets.Production, logger)
		if err := sub.Start(); err != nil {
			logger.Fatalf("MQTT subscribe failed: %v", err)
		}
	}

	// Start API server
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.API.Port,
		Handler: api.NewRouter(pipeline, dbConn, hub, logger, cfg),
	}
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	if mqttClient != nil {
		mqttClient.Close()
	}
	hub.Stop()
	svc.Stop()
	wg.Wait()
	if kafkaProvider != nil {
		if err := kafkaProvider.Close(); err != nil {
			logger.Errorf("Kafka writer close failed: %v", err)
		}
	}
	logger.Info("Service stopped")
}
