package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Field   string      `json:"field,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceIDOf(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusOK, data, message)
}

func RespondWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
	})
}

// HandleServiceError maps service errors to the response envelope. Unknown
// errors are attached to the gin context so the request logger records them.
func HandleServiceError(c *gin.Context, err error) {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Status:  "error",
			Code:    http.StatusUnprocessableEntity,
			Message: validationErr.Message,
			Field:   validationErr.Field,
			TraceID: traceIDOf(c),
		})
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidInquiryType):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSessionNotFound):
		RespondError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrCompanyNotFound):
		RespondError(c, http.StatusNotFound, "Company not found")
	case errors.Is(err, ErrSessionClosed):
		RespondError(c, http.StatusGone, "Session is closed")
	case errors.Is(err, ErrGenerationInFlight),
		errors.Is(err, ErrGenerationStale),
		errors.Is(err, ErrSubmissionInFlight),
		errors.Is(err, ErrDuplicateSubmission):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrSubmissionFailure):
		_ = c.Error(err)
		RespondError(c, http.StatusBadGateway, "Inquiry could not be delivered, please retry")
	case errors.Is(err, ErrGenerationFailure):
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "Inquiry draft could not be generated")
	case errors.Is(err, ErrDatabaseError):
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
