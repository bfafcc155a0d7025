package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/matcher"
	"github.com/timmy/picprompt/internal/service"
	"github.com/timmy/picprompt/internal/vocabulary"
)

func main() {
	// Logs go to stderr so stdout carries only JSON
	appLogger := logger.New(&logger.Config{
		Level:       "warn",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "picprompt-tagmatch",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	vocabPath := flag.String("vocab", "", "Vocabulary JSON file, overrides the configured source")
	mode := flag.String("mode", "tags", "Input kind: tags, message or generated")
	pattern := flag.String("pattern", "", "Extraction pattern for -mode=message")
	noFuzzyBest := flag.Bool("no-fuzzy-best", false, "Keep the raw text of fuzzy matches")
	dropUnmatched := flag.Bool("drop-unmatched", false, "Drop tags with no match")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *vocabPath != "" {
		cfg.Vocabulary.Source = "file"
		cfg.Vocabulary.Path = *vocabPath
	}
	cfg.Matcher.Enabled = true
	cfg.Matcher.UseFuzzyBest = !*noFuzzyBest
	cfg.Matcher.KeepUnmatched = !*dropUnmatched

	input, err := readInput(flag.Args())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read input")
	}

	source, err := vocabulary.NewSource(cfg.Vocabulary, nil)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure vocabulary source")
	}
	resolver := matcher.NewResolver(vocabulary.NewStore(source, appLogger), matcher.ConfigFrom(cfg.Matcher, appLogger))

	svc, err := service.NewPromptService(resolver, nil, cfg.Matcher, cfg.Extraction, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize prompt service")
	}

	ctx := context.Background()
	if _, err := svc.Initialize(ctx); err != nil {
		appLogger.WithError(err).Warn("Vocabulary not loaded; tags pass through unmatched")
	}

	var out interface{}
	switch *mode {
	case "tags":
		out = svc.ProcessPrompt(ctx, input, nil)
	case "message":
		prompts, err := svc.GeneratePrompts(ctx, input, *pattern, "")
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to generate prompts")
		}
		out = prompts
	case "generated":
		prompt, err := svc.ComposeGenerated(ctx, input, "")
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to compose prompt")
		}
		out = prompt
	default:
		appLogger.WithField("mode", *mode).Fatal("Unknown mode")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		appLogger.WithError(err).Fatal("Failed to write output")
	}
}

// readInput joins the positional arguments, or reads stdin when there are none.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
