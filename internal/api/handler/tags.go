package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/matcher"
	"github.com/timmy/picprompt/internal/service"
)

// TagHandler handles tag resolution endpoints.
type TagHandler struct {
	prompts *service.PromptService
}

// NewTagHandler creates a new tag handler.
// Parameters:
//   - prompts: prompt service instance.
// Returns:
//   - *TagHandler: initialized handler.
func NewTagHandler(prompts *service.PromptService) *TagHandler {
	return &TagHandler{prompts: prompts}
}

// ProcessRequest is the body of POST /api/v1/tags/process.
type ProcessRequest struct {
	Prompt        string `json:"prompt"`
	UseFuzzyBest  *bool  `json:"useFuzzyBest"`
	KeepUnmatched *bool  `json:"keepUnmatched"`
}

// MatchRequest is the body of POST /api/v1/tags/match.
type MatchRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// matchOptions overlays the request switches onto the service defaults.
func matchOptions(prompts *service.PromptService, useFuzzyBest, keepUnmatched *bool) *domain.MatchOptions {
	opts := prompts.MatchOptions()
	if useFuzzyBest != nil {
		opts.UseFuzzyBest = *useFuzzyBest
	}
	if keepUnmatched != nil {
		opts.KeepUnmatched = *keepUnmatched
	}
	return &opts
}

// Process handles POST /api/v1/tags/process.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TagHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	opts := matchOptions(h.prompts, req.UseFuzzyBest, req.KeepUnmatched)
	c.JSON(http.StatusOK, h.prompts.ProcessPrompt(c.Request.Context(), req.Prompt, opts))
}

// Match handles POST /api/v1/tags/match.
func (h *TagHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results := h.prompts.MatchTags(c.Request.Context(), req.Tags)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"stats":   domain.StatsOf(results),
	})
}

// Search handles GET /api/v1/tags/search?q=&limit=.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *TagHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	limit := matcher.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query parameter 'limit' must be a positive integer",
			})
			return
		}
		limit = n
	}

	results := h.prompts.SearchTags(c.Request.Context(), query, limit)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// Synonyms handles GET /api/v1/tags/synonyms.
func (h *TagHandler) Synonyms(c *gin.Context) {
	entries := h.prompts.Synonyms()
	c.JSON(http.StatusOK, gin.H{
		"synonyms": entries,
		"total":    len(entries),
	})
}
