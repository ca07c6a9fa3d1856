package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/pkg/response"
	"github.com/onurcolak/dispatch-service/pkg/validator"
)

type DispatchHandler struct {
	service *service.DispatchService
}

func NewDispatchHandler(service *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{service: service}
}

type DispatchRequest struct {
	TemplateID   int64             `json:"templateId" validate:"required,gt=0"`
	Placeholders map[string]string `json:"placeholders"`
	Phone        string            `json:"phone" validate:"omitempty,max=20"`
	Email        string            `json:"email" validate:"omitempty,email"`
	Attachment   string            `json:"attachment" validate:"omitempty,url"`
	SubjectID    string            `json:"subjectId" validate:"omitempty,max=64"`
}

// Dispatch godoc
// @Summary Dispatch a templated notification
// @Description Renders the template for every enabled channel and enqueues one job per channel. Returns once the jobs are queued.
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for dispatch"
// @Param request body DispatchRequest true "Dispatch request"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/dispatch [post]
func (h *DispatchHandler) Dispatch(c echo.Context) error {
	var req DispatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Dispatch(c.Request().Context(), domain.DispatchRequest{
		TemplateID:   req.TemplateID,
		Placeholders: req.Placeholders,
		Recipient:    domain.Recipient{Phone: req.Phone, Email: req.Email},
		Attachment:   req.Attachment,
		SubjectID:    req.SubjectID,
	})
	if err != nil {
		return dispatchError(c, err)
	}

	return response.Accepted(c, "Dispatch accepted", result)
}

func dispatchError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrTemplateNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, errs.ErrNoContact):
		return response.BadRequest(c, err)
	case errors.Is(err, errs.ErrEnqueue):
		return response.ServiceUnavailable(c, err)
	default:
		return response.InternalServerError(c, err)
	}
}
