package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standardized error envelope returned to the request layer.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds a standardized error response.
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a 400 with the offending field.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendNotFoundError sends a 404 for a missing resource.
func SendNotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", message, nil))
}

// SendServerError sends a 500.
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendUnauthorizedError sends a 401.
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendEngineError maps the engine's typed failures onto HTTP responses. Every
// failure keeps its specific, actionable message; only unexpected errors collapse
// into a generic 500.
func SendEngineError(c echo.Context, err error) error {
	var (
		validationErr   *ValidationError
		locationErr     *LocationError
		insufficientErr *InsufficientStockError
		notFoundErr     *NotFoundError
		persistenceErr  *PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return SendValidationError(c, validationErr.Field, validationErr.Reason)
	case errors.As(err, &locationErr):
		details := map[string]string{
			"location": locationErr.Location,
			"rule":     locationErr.Rule,
		}
		return c.JSON(http.StatusUnprocessableEntity,
			CreateErrorResponse("LOCATION_ERROR", locationErr.Error(), details))
	case errors.As(err, &insufficientErr):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"code":      "INSUFFICIENT_STOCK",
				"message":   insufficientErr.Error(),
				"requested": insufficientErr.Requested,
				"available": insufficientErr.Available,
				"shortfall": insufficientErr.Shortfall(),
			},
		})
	case errors.As(err, &notFoundErr):
		return SendNotFoundError(c, notFoundErr.Error())
	case errors.As(err, &persistenceErr):
		return SendServerError(c, "Storage failure, no changes were applied")
	default:
		return SendServerError(c, "Internal error")
	}
}
