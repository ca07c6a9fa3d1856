package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/pkg/response"
	"github.com/onurcolak/dispatch-service/pkg/validator"
)

type OtpHandler struct {
	service *service.OtpService
}

func NewOtpHandler(service *service.OtpService) *OtpHandler {
	return &OtpHandler{service: service}
}

type IssueOtpRequest struct {
	SubjectID    string            `json:"subjectId" validate:"required,max=64"`
	Phone        string            `json:"phone" validate:"omitempty,max=20"`
	Email        string            `json:"email" validate:"omitempty,email"`
	Placeholders map[string]string `json:"placeholders"`
}

type VerifyOtpRequest struct {
	SubjectID string `json:"subjectId" validate:"required,max=64"`
	Otp       string `json:"otp" validate:"required,otpcode"`
}

// IssueOtp godoc
// @Summary Issue a one-time password
// @Description Stores a new 6 digit code for the subject and sends it through the OTP template channels
// @Tags otp
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for dispatch"
// @Param request body IssueOtpRequest true "Subject and contact"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/otp/issue [post]
func (h *OtpHandler) IssueOtp(c echo.Context) error {
	var req IssueOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Issue(c.Request().Context(), domain.OtpIssueRequest{
		SubjectID:    req.SubjectID,
		Contact:      domain.Recipient{Phone: req.Phone, Email: req.Email},
		Placeholders: req.Placeholders,
	})
	if err != nil {
		return dispatchError(c, err)
	}

	return response.OkWithMessage(c, result.Message, result)
}

// VerifyOtp godoc
// @Summary Verify a one-time password
// @Description Marks the latest matching code as verified. Invalid codes return 400, expired codes 410 and reused codes 409.
// @Tags otp
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key for dispatch"
// @Param request body VerifyOtpRequest true "Subject and code"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse{data=domain.OtpVerifyResult}
// @Failure 409 {object} response.ErrorResponse{data=domain.OtpVerifyResult}
// @Failure 410 {object} response.ErrorResponse{data=domain.OtpVerifyResult}
// @Failure 422 {object} validator.ValidationErrorResponse
// @Router /api/v1/otp/verify [post]
func (h *OtpHandler) VerifyOtp(c echo.Context) error {
	var req VerifyOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Verify(c.Request().Context(), req.SubjectID, req.Otp)
	switch {
	case err == nil:
		return response.OkWithMessage(c, "OTP verified", result)
	case errors.Is(err, errs.ErrOtpInvalid):
		return response.FailWithData(c, http.StatusBadRequest, err, result)
	case errors.Is(err, errs.ErrOtpExpired):
		return response.FailWithData(c, http.StatusGone, err, result)
	case errors.Is(err, errs.ErrOtpAlreadyVerified):
		return response.FailWithData(c, http.StatusConflict, err, result)
	default:
		return response.InternalServerError(c, err)
	}
}
