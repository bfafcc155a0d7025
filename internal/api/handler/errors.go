package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/api/middleware"
	"github.com/timmy/picprompt/internal/extraction"
	"github.com/timmy/picprompt/internal/repository"
	"github.com/timmy/picprompt/internal/service"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDefaultPreset):
		return http.StatusConflict
	case errors.Is(err, extraction.ErrMalformedPattern):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoPrompt):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": msg}. Server errors are logged.
func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Error(msg)
	}
	c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
