package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/onurcolak/dispatch-service/pkg/redis"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDisabled = "disabled"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
}

type HealthReport struct {
	Status     string                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           *sqlx.DB
	redis        *redis.Client
	queue        pinger
	queueBackend string
	checkTimeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, queue pinger, queueBackend string) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redis:        redisClient,
		queue:        queue,
		queueBackend: queueBackend,
		checkTimeout: 2 * time.Second,
	}
}

// Health pings the database, valkey and the dispatch queue in parallel.
// A missing database or queue is fatal for dispatching and answers 503; an
// unreachable valkey only degrades caching.
// @Summary Health check
// @Description Returns overall status with DB, Redis and queue connectivity results
// @Tags health
// @Produce json
// @Success 200 {object} HealthReport
// @Failure 503 {object} HealthReport
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	var dbStatus, redisStatus, queueStatus string

	// Checks report through their status and never fail the group.
	var g errgroup.Group
	g.Go(func() error {
		dbStatus = statusDown
		if h.db != nil && h.db.PingContext(ctx) == nil {
			dbStatus = statusUp
		}
		return nil
	})
	g.Go(func() error {
		redisStatus = statusDisabled
		if h.redis != nil {
			redisStatus = check(ctx, h.redis)
		}
		return nil
	})
	g.Go(func() error {
		queueStatus = statusDown
		if h.queue != nil {
			queueStatus = check(ctx, h.queue)
		}
		return nil
	})
	_ = g.Wait()

	report := HealthReport{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Components: map[string]ComponentHealth{
			"database": {Status: dbStatus},
			"redis":    {Status: redisStatus},
			"queue":    {Status: queueStatus, Backend: h.queueBackend},
		},
	}

	code := http.StatusOK
	switch {
	case dbStatus == statusDown || queueStatus == statusDown:
		report.Status = "down"
		code = http.StatusServiceUnavailable
	case redisStatus == statusDown:
		report.Status = "degraded"
	}

	return c.JSON(code, report)
}

func check(ctx context.Context, p pinger) string {
	if err := p.Ping(ctx); err != nil {
		return statusDown
	}
	return statusUp
}
