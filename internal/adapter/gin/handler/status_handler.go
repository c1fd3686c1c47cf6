package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/response"
)

var errNoDatabase = errors.New("database not configured")

// HealthChecker runs a trivial query and reports how long it took.
type HealthChecker interface {
	Check(ctx context.Context) (time.Duration, error)
}

// ServiceInfo identifies the running service in status payloads.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// StatusHandler serves the liveness and database health endpoints
type StatusHandler struct {
	db      HealthChecker
	info    ServiceInfo
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewStatusHandler creates a StatusHandler. db may be nil when no database is
// configured; timeout bounds each probe.
func NewStatusHandler(db HealthChecker, info ServiceInfo, timeout time.Duration, log *zap.Logger) *StatusHandler {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &StatusHandler{db: db, info: info, timeout: timeout, log: log, now: time.Now}
}

// StatusResponse is the payload of GET /status.
type StatusResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Timestamp   int64  `json:"timestamp"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Database    any    `json:"database"`
}

// DatabaseHealth is the database part of GET /status/db.
type DatabaseHealth struct {
	Status         string  `json:"status"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	TestResult     int     `json:"test_result"`
}

func (h *StatusHandler) payload(status string, database any) StatusResponse {
	return StatusResponse{
		Status:      status,
		Service:     h.info.Name,
		Timestamp:   h.now().Unix(),
		Version:     h.info.Version,
		Environment: h.info.Environment,
		Database:    database,
	}
}

func (h *StatusHandler) probe(ctx context.Context) (time.Duration, error) {
	if h.db == nil {
		return 0, errNoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.db.Check(ctx)
}

// Status handles GET /status. It always answers 200; an unreachable database
// only degrades the reported status.
//
//	@Summary	Service status
//	@Tags		status
//	@Produce	json
//	@Success	200	{object}	response.SuccessResponse{data=StatusResponse}
//	@Router		/status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	if _, err := h.probe(c.Request.Context()); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("status: database unreachable", zap.Error(err))
		response.Success(c, h.payload("degraded", "unreachable"), "")
		return
	}
	response.Success(c, h.payload("healthy", "connected"), "")
}

// DatabaseStatus handles GET /status/db.
//
//	@Summary	Service status with a database round trip
//	@Tags		status
//	@Produce	json
//	@Success	200	{object}	response.SuccessResponse{data=StatusResponse}
//	@Failure	503	{object}	response.ErrorResponse
//	@Router		/status/db [get]
func (h *StatusHandler) DatabaseStatus(c *gin.Context) {
	elapsed, err := h.probe(c.Request.Context())
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("database health check failed", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, "Database health check failed", err.Error())
		return
	}

	ms := math.Round(float64(elapsed.Microseconds())/10) / 100
	response.Success(c, h.payload("healthy", DatabaseHealth{
		Status:         "connected",
		ResponseTimeMS: ms,
		TestResult:     1,
	}), "")
}
