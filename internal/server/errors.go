package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/smallbiznis/consultinvoice/internal/observability/tracing"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidYear    = errors.New("invalid_year")
	ErrInvalidMonth   = errors.New("invalid_month")
	ErrInvalidBody    = errors.New("invalid_body")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: ErrInternal.Error()}
	}

	message := tracing.SafeError(err).Error()
	if isValidationError(err) {
		return http.StatusBadRequest, errorResponse{Error: message}
	}
	return http.StatusInternalServerError, errorResponse{Error: message}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidYear),
		errors.Is(err, ErrInvalidMonth),
		errors.Is(err, consultationdomain.ErrInvalidPeriod):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case isValidationError(err):
		return "validation_error", err.Error()
	case errors.Is(err, ErrInvalidBody):
		return "decode_error", ErrInvalidBody.Error()
	default:
		return "internal_error", ErrInternal.Error()
	}
}
