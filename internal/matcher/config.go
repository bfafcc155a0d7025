package matcher

import (
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/fuzzy"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/synonym"
)

// ConfigFrom builds resolver collaborators from application configuration.
// Extra synonyms are overlaid on the built-in table.
func ConfigFrom(cfg config.MatcherConfig, log *logger.Logger) Config {
	return Config{
		Synonyms:     synonym.Default().With(cfg.ExtraSynonyms),
		FuzzyEnabled: cfg.Fuzzy.Enabled,
		FuzzyFactory: fuzzy.NewLevenshteinFactory(fuzzy.Options{
			Threshold:      cfg.Fuzzy.Threshold,
			Distance:       cfg.Fuzzy.Distance,
			MinMatchLength: cfg.Fuzzy.MinMatchLength,
			Limit:          cfg.Fuzzy.Limit,
		}),
		CacheSize: cfg.Fuzzy.CacheSize,
		Log:       log,
	}
}
