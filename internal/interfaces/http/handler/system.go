package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/infrastructure/logger"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchedulerStatus reports the state of the recurring sync
type SchedulerStatus interface {
	IsRunning() bool
	IsSyncing() bool
	NextRun() time.Time
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	scheduler SchedulerStatus
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. scheduler may be nil.
func NewSystemHandler(name, version string, db Pinger, scheduler SchedulerStatus) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		scheduler: scheduler,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string         `json:"name" example:"order-sync"`
	Version   string         `json:"version" example:"1.0.0"`
	GoVersion string         `json:"go_version" example:"go1.25.5"`
	Uptime    string         `json:"uptime" example:"1h30m45s"`
	Scheduler *SchedulerInfo `json:"scheduler,omitempty"`
}

// SchedulerInfo represents scheduler status information
type SchedulerInfo struct {
	Running bool       `json:"running"`
	Syncing bool       `json:"syncing"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns version, uptime and scheduler state
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.scheduler != nil {
		info.Scheduler = &SchedulerInfo{
			Running: h.scheduler.IsRunning(),
			Syncing: h.scheduler.IsSyncing(),
		}
		if next := h.scheduler.NextRun(); !next.IsZero() {
			info.Scheduler.NextRun = &next
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// Health answers 200 when the database is reachable and 503 otherwise
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "ok",
	})
}
