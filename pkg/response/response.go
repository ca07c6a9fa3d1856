package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type PaginatedResponse struct {
	Success    bool  `json:"success"`
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func Ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func OkWithMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Accepted(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusAccepted, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// fail writes the error envelope. The request id lets callers quote the
// failing request when they report it.
func fail(c echo.Context, status int, message string) error {
	return FailWithData(c, status, errors.New(message), nil)
}

// FailWithData writes the error envelope together with a typed outcome the
// caller can branch on.
func FailWithData(c echo.Context, status int, err error, data any) error {
	return c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		Data:      data,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	})
}

func BadRequest(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, err.Error())
}

func Unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Invalid or missing API key")
}

func NotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message)
}

// Conflict reports a request that clashes with the current state, such as a
// reused OTP or a replay of a delivery that did not fail.
func Conflict(c echo.Context, err error) error {
	return fail(c, http.StatusConflict, err.Error())
}


// ServiceUnavailable reports that the dispatch queue could not take the work.
func ServiceUnavailable(c echo.Context, err error) error {
	return fail(c, http.StatusServiceUnavailable, err.Error())
}

func InternalServerError(c echo.Context, err error) error {
	return fail(c, http.StatusInternalServerError, err.Error())
}

func Paginated(c echo.Context, data any, page, pageSize int, totalCount int64) error {
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}
