package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/service"
)

// SettingsHandler exposes the runtime tag matching switches.
type SettingsHandler struct {
	prompts *service.PromptService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(prompts *service.PromptService) *SettingsHandler {
	return &SettingsHandler{prompts: prompts}
}

// GetMatching handles GET /api/v1/settings/matching.
func (h *SettingsHandler) GetMatching(c *gin.Context) {
	c.JSON(http.StatusOK, h.prompts.Status())
}

// UpdateMatching handles PUT /api/v1/settings/matching. Enabling matching
// loads the vocabulary when it is not loaded yet.
func (h *SettingsHandler) UpdateMatching(c *gin.Context) {
	var patch service.MatchingSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	h.prompts.UpdateSettings(c.Request.Context(), patch)
	c.JSON(http.StatusOK, h.prompts.Status())
}
