package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// RecentLimit is the number of readings returned by the read path.
const RecentLimit = 50

type Processor interface {
	Process(ctx context.Context, table string, in models.ReadingInput) (models.Reading, error)
}

type Reader interface {
	ListRecent(ctx context.Context, table string, limit int) ([]models.Reading, error)
}

type Handler struct {
	pipeline Processor
	reader   Reader
	logger   *logging.Logger
}

func NewHandler(pipeline Processor, reader Reader, logger *logging.Logger) *Handler {
	return &Handler{pipeline: pipeline, reader: reader, logger: logger}
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Upload returns the ingestion handler bound to one dataset table.
func (h *Handler) Upload(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.logger.WithRequestID(RequestID(c))

		var in models.ReadingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			log.Errorf("Invalid reading body: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail"})
			return
		}

		r, err := h.pipeline.Process(c.Request.Context(), table, in)
		if err != nil {
			log.Errorf("Upload to %s failed: %v", table, err)
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail"})
			return
		}
		log.Infof("Stored reading %d from sensor %s into %s", r.ID, models.StringValue(r.SensorID), table)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// ListRecent returns the newest readings of one dataset. Query failures are
// reported in the body with status 200.
func (h *Handler) ListRecent(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		readings, err := h.reader.ListRecent(c.Request.Context(), table, RecentLimit)
		if err != nil {
			h.logger.WithRequestID(RequestID(c)).Errorf("List %s failed: %v", table, err)
			c.JSON(http.StatusOK, gin.H{"error": err.Error()})
			return
		}
		if readings == nil {
			readings = []models.Reading{}
		}
		c.JSON(http.StatusOK, readings)
	}
}
