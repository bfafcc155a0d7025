package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/service"
)

// PromptHandler handles extraction and composition endpoints.
type PromptHandler struct {
	prompts *service.PromptService
}

// NewPromptHandler creates a new prompt handler.
// Parameters:
//   - prompts: prompt service instance.
// Returns:
//   - *PromptHandler: initialized handler.
func NewPromptHandler(prompts *service.PromptService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

// ComposeRequest is the body of POST /api/v1/prompts/compose.
type ComposeRequest struct {
	Camera        string `json:"camera"`
	Scene         string `json:"scene"`
	Characters    string `json:"characters"`
	Preset        string `json:"preset"`
	UseFuzzyBest  *bool  `json:"useFuzzyBest"`
	KeepUnmatched *bool  `json:"keepUnmatched"`
}

// MessageRequest is the body of the extract and generate endpoints.
type MessageRequest struct {
	Message string `json:"message"`
	Pattern string `json:"pattern"`
	Preset  string `json:"preset"`
}

// GeneratedRequest is the body of POST /api/v1/prompts/generated.
type GeneratedRequest struct {
	Text   string `json:"text"`
	Preset string `json:"preset"`
}

// PatternRequest is the body of PUT /api/v1/prompts/pattern.
type PatternRequest struct {
	Pattern string `json:"pattern" binding:"required"`
}

// Compose handles POST /api/v1/prompts/compose.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PromptHandler) Compose(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	segments := domain.PromptSegments{Camera: req.Camera, Scene: req.Scene, Characters: req.Characters}
	opts := matchOptions(h.prompts, req.UseFuzzyBest, req.KeepUnmatched)
	out, err := h.prompts.Compose(c.Request.Context(), segments, req.Preset, opts)
	if err != nil {
		respondError(c, "Compose failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Extract handles POST /api/v1/prompts/extract.
// A message without image markup returns an empty list, not an error.
func (h *PromptHandler) Extract(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	segments, err := h.prompts.ExtractSegments(c.Request.Context(), req.Message, req.Pattern)
	if err != nil {
		respondError(c, "Extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"segments": segments,
		"total":    len(segments),
	})
}

// Generate handles POST /api/v1/prompts/generate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PromptHandler) Generate(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	prompts, err := h.prompts.GeneratePrompts(c.Request.Context(), req.Message, req.Pattern, req.Preset)
	if err != nil {
		respondError(c, "Generate failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"prompts": prompts,
		"total":   len(prompts),
	})
}

// Generated handles POST /api/v1/prompts/generated, composing a prompt
// written by a separate prompt-writing model.
func (h *PromptHandler) Generated(c *gin.Context) {
	var req GeneratedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.prompts.ComposeGenerated(c.Request.Context(), req.Text, req.Preset)
	if err != nil {
		respondError(c, "Compose failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetPattern handles GET /api/v1/prompts/pattern.
func (h *PromptHandler) GetPattern(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pattern": h.prompts.Pattern().String()})
}

// SetPattern handles PUT /api/v1/prompts/pattern.
func (h *PromptHandler) SetPattern(c *gin.Context) {
	var req PatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.prompts.SetPattern(req.Pattern); err != nil {
		respondError(c, "Invalid pattern", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pattern": h.prompts.Pattern().String()})
}
