package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	prompts *service.PromptService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(prompts *service.PromptService) *HealthHandler {
	return &HealthHandler{prompts: prompts}
}

// Health returns the service status. The server is healthy even when the
// vocabulary failed to load; matcher.ready reports that separately.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"matcher": h.prompts.Status(),
	})
}
