package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

type DBStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ReadyResponse struct {
	HealthResponse
	DB DBStatus `json:"db"`
}

// HealthHandler serves the liveness and readiness probes. Readiness depends
// on the book store answering a ping.
type HealthHandler struct {
	db        *gorm.DB
	startTime time.Time
	version   string
}

func NewHealthHandler(db *gorm.DB, startTime time.Time, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: startTime,
		version:   version,
	}
}

func (h *HealthHandler) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

func (h *HealthHandler) status(s string) HealthResponse {
	return HealthResponse{
		Status:  s,
		Version: h.version,
		Uptime:  int64(time.Since(h.startTime).Seconds()),
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.status("ok"))
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Reports whether the book store answers a ping
// @Tags         health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"DB_HANDLE_UNAVAILABLE",
			"failed to get underlying DB",
		)
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			HealthResponse: h.status("unhealthy"),
			DB:             DBStatus{Status: "down", Error: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		HealthResponse: h.status("ready"),
		DB:             DBStatus{Status: "up"},
	})
}
