package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/picprompt/internal/api/handler"
	"github.com/timmy/picprompt/internal/api/middleware"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/repository"
	"github.com/timmy/picprompt/internal/service"
)

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - cfg: server configuration (mode and CORS).
//   - prompts: prompt service.
//   - presets: preset repository.
//   - log: base request logger.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(
	cfg config.ServerConfig,
	prompts *service.PromptService,
	presets *repository.PresetRepository,
	log *logger.Logger,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(prompts)
	tagHandler := handler.NewTagHandler(prompts)
	promptHandler := handler.NewPromptHandler(prompts)
	settingsHandler := handler.NewSettingsHandler(prompts)
	presetHandler := handler.NewPresetHandler(presets)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Tags
		v1.POST("/tags/process", tagHandler.Process)
		v1.POST("/tags/match", tagHandler.Match)
		v1.GET("/tags/search", tagHandler.Search)
		v1.GET("/tags/synonyms", tagHandler.Synonyms)

		// Prompts
		v1.POST("/prompts/compose", promptHandler.Compose)
		v1.POST("/prompts/extract", promptHandler.Extract)
		v1.POST("/prompts/generate", promptHandler.Generate)
		v1.POST("/prompts/generated", promptHandler.Generated)
		v1.GET("/prompts/pattern", promptHandler.GetPattern)
		v1.PUT("/prompts/pattern", promptHandler.SetPattern)

		// Settings
		v1.GET("/settings/matching", settingsHandler.GetMatching)
		v1.PUT("/settings/matching", settingsHandler.UpdateMatching)

		// Presets
		v1.GET("/presets", presetHandler.List)
		v1.POST("/presets", presetHandler.Create)
		v1.GET("/presets/:key", presetHandler.Get)
		v1.PUT("/presets/:key", presetHandler.Update)
		v1.DELETE("/presets/:key", presetHandler.Delete)
		v1.POST("/presets/:key/select", presetHandler.Select)
		v1.PUT("/presets/:key/advanced", presetHandler.UpdateAdvanced)
	}

	return r
}
