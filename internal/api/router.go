package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/stream"
)

func NewRouter(pipeline Processor, reader Reader, hub *stream.Hub, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, RecoveryHandler(logger)))
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	h := NewHandler(pipeline, reader, logger)

	r.GET("/", h.Home)

	// Ingestion
	r.POST("/upload", h.Upload(cfg.Datasets.Production))
	r.POST("/upload-test", h.Upload(cfg.Datasets.Test))

	// Read path
	r.GET("/data", h.ListRecent(cfg.Datasets.Production))
	r.GET("/data-test", h.ListRecent(cfg.Datasets.Test))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if hub != nil {
		r.GET("/ws", gin.WrapF(hub.ServeWS))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail"})
	})
	return r
}
