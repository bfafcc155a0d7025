package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/repository"
)

// PresetHandler handles preset management endpoints.
type PresetHandler struct {
	repo *repository.PresetRepository
}

// NewPresetHandler creates a new preset handler.
// Parameters:
//   - repo: preset repository.
// Returns:
//   - *PresetHandler: initialized handler.
func NewPresetHandler(repo *repository.PresetRepository) *PresetHandler {
	return &PresetHandler{repo: repo}
}

// CreatePresetRequest is the body of POST /api/v1/presets.
type CreatePresetRequest struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	PrefixPrompt   string `json:"prefixPrompt"`
	SuffixPrompt   string `json:"suffixPrompt"`
	NegativePrompt string `json:"negativePrompt"`
}

// List handles GET /api/v1/presets.
func (h *PresetHandler) List(c *gin.Context) {
	presets, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list presets", err)
		return
	}
	current, err := h.repo.Current(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to get current preset", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"presets": presets,
		"current": current.Key,
		"total":   len(presets),
	})
}

// Get handles GET /api/v1/presets/:key.
func (h *PresetHandler) Get(c *gin.Context) {
	preset, err := h.repo.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, "Failed to get preset", err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// Create handles POST /api/v1/presets. The new preset becomes current.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PresetHandler) Create(c *gin.Context) {
	var req CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	preset := &domain.Preset{
		Key:            req.Key,
		Name:           req.Name,
		PrefixPrompt:   req.PrefixPrompt,
		SuffixPrompt:   req.SuffixPrompt,
		NegativePrompt: req.NegativePrompt,
	}
	if err := h.repo.Create(c.Request.Context(), preset); err != nil {
		respondError(c, "Failed to create preset", err)
		return
	}
	c.JSON(http.StatusCreated, preset)
}

// Update handles PUT /api/v1/presets/:key.
func (h *PresetHandler) Update(c *gin.Context) {
	var req domain.PresetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	preset, err := h.repo.Update(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		respondError(c, "Failed to update preset", err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// UpdateAdvanced handles PUT /api/v1/presets/:key/advanced.
func (h *PresetHandler) UpdateAdvanced(c *gin.Context) {
	var req domain.AdvancedSettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	preset, err := h.repo.UpdateAdvanced(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		respondError(c, "Failed to update advanced settings", err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// Select handles POST /api/v1/presets/:key/select.
func (h *PresetHandler) Select(c *gin.Context) {
	key := c.Param("key")
	if err := h.repo.Select(c.Request.Context(), key); err != nil {
		respondError(c, "Failed to select preset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": key})
}

// Delete handles DELETE /api/v1/presets/:key. The default preset cannot be deleted.
func (h *PresetHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, "Failed to delete preset", err)
		return
	}
	c.Status(http.StatusNoContent)
}
