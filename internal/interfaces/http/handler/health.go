package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/backend/internal/interfaces/http/dto"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness and store reachability
type HealthHandler struct {
	BaseHandler
	db        *gorm.DB
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports overall service health. The response is 200 as long
// as the process is serving; a broken store shows in the payload.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
