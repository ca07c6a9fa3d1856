package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/pkg/response"
	"github.com/onurcolak/dispatch-service/pkg/validator"
)

type DeliveryHandler struct {
	service *service.DispatchService
}

func NewDeliveryHandler(service *service.DispatchService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

type ListDeliveriesQuery struct {
	Status  string `query:"status" json:"status" validate:"omitempty,oneof=success failed"`
	Channel string `query:"channel" json:"channel" validate:"omitempty,channel"`
}

func (q ListDeliveriesQuery) filter() domain.DeliveryFilter {
	var filter domain.DeliveryFilter
	if q.Status != "" {
		status := domain.DeliveryStatus(q.Status)
		filter.Status = &status
	}
	if q.Channel != "" {
		channel := domain.Channel(q.Channel)
		filter.Channel = &channel
	}
	return filter
}

// GetDeliveries godoc
// @Summary List delivery log entries
// @Description Retrieves a paginated list of executed jobs, newest first, with optional status and channel filters
// @Tags deliveries
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status (success, failed)"
// @Param channel query string false "Filter by channel (SMS, WhatsApp, Email, Notification)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/deliveries [get]
func (h *DeliveryHandler) GetDeliveries(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	var query ListDeliveriesQuery
	if err := c.Bind(&query); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&query); err != nil {
		return validator.HandleValidationError(c, err)
	}

	entries, totalCount, err := h.service.GetDeliveries(c.Request().Context(), query.filter(), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, entries, page, pageSize, totalCount)
}

// GetStats godoc
// @Summary Get delivery statistics
// @Description Returns count of delivery log entries by status
// @Tags deliveries
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/deliveries/stats [get]
func (h *DeliveryHandler) GetStats(c echo.Context) error {
	stats, err := h.service.GetDeliveryStats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, stats)
}

// GetCachedDeliveries godoc
// @Summary Get recent outcomes from valkey
// @Description Returns the delivery outcomes cached per job id
// @Tags deliveries
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/deliveries/cached [get]
func (h *DeliveryHandler) GetCachedDeliveries(c echo.Context) error {
	cached, err := h.service.GetCachedDeliveries(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cached)
}

// ReplayDelivery godoc
// @Summary Replay a failed delivery
// @Description Enqueues the job stored with a failed delivery log entry again under a new job id
// @Tags deliveries
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param id path int true "Delivery log entry ID"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/deliveries/{id}/replay [post]
func (h *DeliveryHandler) ReplayDelivery(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return response.BadRequest(c, fmt.Errorf("invalid delivery id"))
	}

	job, err := h.service.ReplayDelivery(c.Request().Context(), id)
	switch {
	case err == nil:
		return response.Accepted(c, "Delivery replay accepted", job)
	case errors.Is(err, errs.ErrDeliveryNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, errs.ErrReplayNotAllowed):
		return response.Conflict(c, err)
	case errors.Is(err, errs.ErrEnqueue):
		return response.ServiceUnavailable(c, err)
	default:
		return response.InternalServerError(c, err)
	}
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
