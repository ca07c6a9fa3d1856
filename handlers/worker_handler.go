package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/worker"
	"github.com/onurcolak/dispatch-service/pkg/response"
	"github.com/onurcolak/dispatch-service/pkg/validator"
)

type WorkerHandler struct {
	pool   *worker.Pool
	ctx    context.Context
	config *environments.Config
}

type StartWorkersRequest struct {
	Workers        *int `json:"workers,omitempty" validate:"omitempty,min=1,max=64"`
	AlertThreshold *int `json:"alertThreshold,omitempty" validate:"omitempty,min=0"`
}

func NewWorkerHandler(pool *worker.Pool, ctx context.Context, cfg *environments.Config) *WorkerHandler {
	return &WorkerHandler{
		pool:   pool,
		ctx:    ctx,
		config: cfg,
	}
}

// StartWorkers godoc
// @Summary Start the dispatch workers
// @Description Starts consuming the dispatch queue with optional parameters
// @Tags workers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param request body StartWorkersRequest false "Worker parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/workers/start [post]
func (h *WorkerHandler) StartWorkers(c echo.Context) error {
	if h.pool.IsRunning() {
		return response.OkWithMessage(c, "Workers are already running", h.pool.GetStatus())
	}

	var req StartWorkersRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	workers := h.config.Worker.Count
	if req.Workers != nil {
		workers = *req.Workers
	}
	// Kafka partitions keep order only with a single reader.
	if h.config.Queue.Backend == "kafka" {
		workers = 1
	}

	alertThreshold := h.config.Alert.FailureThreshold
	if req.AlertThreshold != nil {
		alertThreshold = *req.AlertThreshold
	}

	if err := h.pool.StartWithParams(h.ctx, workers, alertThreshold); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Workers started successfully", h.pool.GetStatus())
}

// StopWorkers godoc
// @Summary Stop the dispatch workers
// @Description Stops consuming the dispatch queue. Jobs in flight finish first.
// @Tags workers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/workers/stop [post]
func (h *WorkerHandler) StopWorkers(c echo.Context) error {
	if !h.pool.IsRunning() {
		return response.OkWithMessage(c, "Workers are already stopped", h.pool.GetStatus())
	}

	if err := h.pool.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Workers stopped successfully", h.pool.GetStatus())
}

// GetWorkerStatus godoc
// @Summary Get worker status
// @Description Returns the current status and counters of the worker pool
// @Tags workers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/workers/status [get]
func (h *WorkerHandler) GetWorkerStatus(c echo.Context) error {
	return response.Ok(c, h.pool.GetStatus())
}
