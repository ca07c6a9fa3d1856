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

type AdminHandler struct {
	service *service.AdminService
}

func NewAdminHandler(service *service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type CreateProviderRequest struct {
	APIType string `json:"apiType" validate:"required,channel"`
	BaseURL string `json:"baseUrl" validate:"required,url,max=500"`
	Params  string `json:"params" validate:"max=1000"`
	Method  string `json:"method" validate:"required,oneof=GET POST SMTP"`
}

type SetProviderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Inactive"`
}

type UpsertSignatureRequest struct {
	Channel   string `json:"channel" validate:"required,channel"`
	Signature string `json:"signature" validate:"max=500"`
	Status    string `json:"status" validate:"required,oneof=Active Inactive"`
}

// ListProviders godoc
// @Summary List gateway providers
// @Tags providers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/providers [get]
func (h *AdminHandler) ListProviders(c echo.Context) error {
	providers, err := h.service.ListProviders(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, providers)
}

// CreateProvider godoc
// @Summary Register a gateway provider
// @Description Adds an Inactive provider endpoint for a channel. Activate it through the status endpoint.
// @Tags providers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param request body CreateProviderRequest true "Provider to create"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/providers [post]
func (h *AdminHandler) CreateProvider(c echo.Context) error {
	var req CreateProviderRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	provider, err := h.service.CreateProvider(c.Request().Context(), &domain.ProviderConfig{
		APIType: domain.Channel(req.APIType),
		BaseURL: req.BaseURL,
		Params:  req.Params,
		Method:  req.Method,
	})
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Created(c, "Provider created successfully", provider)
}

// SetProviderStatus godoc
// @Summary Activate or deactivate a provider
// @Tags providers
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param id path int true "Provider ID"
// @Param request body SetProviderStatusRequest true "New status"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Router /api/v1/providers/{id}/status [put]
func (h *AdminHandler) SetProviderStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return response.BadRequest(c, fmt.Errorf("invalid provider id"))
	}

	var req SetProviderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	provider, err := h.service.SetProviderStatus(c.Request().Context(), id, domain.Status(req.Status))
	if err != nil {
		if errors.Is(err, errs.ErrProviderNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Provider status updated", provider)
}

// ListSignatures godoc
// @Summary List channel signatures
// @Tags signatures
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/signatures [get]
func (h *AdminHandler) ListSignatures(c echo.Context) error {
	signatures, err := h.service.ListSignatures(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, signatures)
}

// UpsertSignature godoc
// @Summary Set the signature of a channel
// @Description Creates or replaces the signature appended to messages of the given channel
// @Tags signatures
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for admin"
// @Param request body UpsertSignatureRequest true "Signature"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/signatures [put]
func (h *AdminHandler) UpsertSignature(c echo.Context) error {
	var req UpsertSignatureRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	signature, err := h.service.UpsertSignature(
		c.Request().Context(),
		domain.Channel(req.Channel),
		req.Signature,
		domain.Status(req.Status),
	)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Signature saved", signature)
}
