package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scaffoldlab/scaffold-backend/internal/services"
)

var (
	errMissingRefineInput  = errors.New("instruction or class_input is required")
	errMissingClassInput   = errors.New("class_input is required")
	errMissingAssignmentID = errors.New("assignment_id is required")
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service error taxonomy onto HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrMissingAssignmentLink):
		RespondError(c, http.StatusBadRequest, "missing_assignment_link", err)
	case errors.Is(err, services.ErrAssignmentSourceUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "assignment_source_unavailable", err)
	case errors.Is(err, services.ErrVersionMismatch):
		RespondError(c, http.StatusConflict, "version_mismatch", err)
	case errors.Is(err, services.ErrInvalidGenerationOutput):
		RespondError(c, http.StatusBadGateway, "invalid_generation_output", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
