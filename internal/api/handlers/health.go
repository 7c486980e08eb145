package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/reelgrab/internal/services/storage"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

type HealthHandler struct {
	storage storage.StorageInterface
	started time.Time
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status       string `json:"status"`
	Bucket       string `json:"bucket,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// NewHealthHandler creates the liveness handlers. storage may be nil when
// archiving is disabled.
func NewHealthHandler(storage storage.StorageInterface) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		started: time.Now(),
	}
}

// Root answers the hosting platform's probe. It never depends on the bot or
// the archive.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	// Simple liveness check - if this endpoint responds, the service is alive
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Health reports the archive bucket status. An unreachable bucket is shown
// as degraded but still answers 200, since the bot works without it.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Services:  make(map[string]ServiceHealth),
	}

	if h.storage != nil {
		s3Health := h.checkS3(ctx)
		response.Services["s3"] = s3Health
		if s3Health.Status != "healthy" {
			response.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkS3(ctx context.Context) ServiceHealth {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := h.storage.Exists(checkCtx, "health-check-test")
	responseTime := time.Since(start).String()

	if err != nil {
		utils.LogError(ctx, "S3 health check failed", err)
		return ServiceHealth{
			Status:       "unhealthy",
			Bucket:       h.storage.BucketName(),
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return ServiceHealth{
		Status:       "healthy",
		Bucket:       h.storage.BucketName(),
		ResponseTime: responseTime,
	}
}
