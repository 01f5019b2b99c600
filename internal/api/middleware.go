package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(latency.Seconds())
		logger.WithRequestID(RequestID(c)).Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}

// RecoveryHandler turns a panic into the write path's failure response.
func RecoveryHandler(logger *logging.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered interface{}) {
		logger.WithRequestID(RequestID(c)).Errorf("Recovered from panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "fail"})
	}
}
