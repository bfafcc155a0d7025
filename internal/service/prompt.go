package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/picprompt/internal/composer"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/extraction"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/matcher"
)

// Status values reported by PromptService.Status.
const (
	StatusDisabled       = "Disabled"
	StatusReady          = "Ready"
	StatusLoading        = "Loading..."
	StatusNotInitialized = "Not initialized"
)

// ErrNoPrompt is returned when text yields nothing to generate from.
var ErrNoPrompt = errors.New("no image prompt found")

// PresetProvider supplies the preset applied during composition.
type PresetProvider interface {
	Current(ctx context.Context) (*domain.Preset, error)
	Get(ctx context.Context, key string) (*domain.Preset, error)
}

// MatchingSettings are the runtime tag matching switches.
type MatchingSettings struct {
	Enabled       bool `json:"enabled"`
	UseFuzzyBest  bool `json:"useFuzzyBest"`
	KeepUnmatched bool `json:"keepUnmatched"`
	ShowStats     bool `json:"showStats"`
}

// MatchingSettingsPatch is a partial update of MatchingSettings.
type MatchingSettingsPatch struct {
	Enabled       *bool `json:"enabled"`
	UseFuzzyBest  *bool `json:"useFuzzyBest"`
	KeepUnmatched *bool `json:"keepUnmatched"`
	ShowStats     *bool `json:"showStats"`
}

// StatusInfo describes the matcher state.
type StatusInfo struct {
	Text           string           `json:"text"`
	Ready          bool             `json:"ready"`
	VocabularySize int              `json:"vocabularySize"`
	Settings       MatchingSettings `json:"settings"`
	Pattern        string           `json:"pattern"`
	Structured     bool             `json:"patternStructured"` // pattern captures camera and scene
	FuzzyError     string           `json:"fuzzyError,omitempty"`
}

// GeneratedPrompt is a composed prompt read from free-form model output.
type GeneratedPrompt struct {
	domain.ComposedPrompt
	Strategy string `json:"strategy"`
}

// PromptService ties tag resolution, extraction and composition together.
type PromptService struct {
	resolver *matcher.Resolver
	matching *composer.Composer
	verbatim *composer.Composer
	presets  PresetProvider
	logger   *logger.Logger
	loading  atomic.Int32 // Initialize calls in flight

	mu       sync.RWMutex
	settings MatchingSettings
	pattern  *extraction.Pattern
}

// NewPromptService creates a prompt service.
// Parameters:
//   - resolver: tag resolver, initialized by Initialize.
//   - presets: preset source; nil composes without a preset.
//   - matcherCfg: initial matching switches.
//   - extractionCfg: extraction pattern; empty uses the default.
//   - log: logger instance.
// Returns:
//   - *PromptService: initialized service.
//   - error: non-nil when the extraction pattern is malformed.
func NewPromptService(
	resolver *matcher.Resolver,
	presets PresetProvider,
	matcherCfg config.MatcherConfig,
	extractionCfg config.ExtractionConfig,
	log *logger.Logger,
) (*PromptService, error) {
	raw := extractionCfg.Pattern
	if strings.TrimSpace(raw) == "" {
		raw = config.DefaultExtractionPattern
	}
	pattern, err := extraction.ParsePattern(raw)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &PromptService{
		resolver: resolver,
		matching: composer.New(resolver),
		verbatim: composer.New(resolver, composer.WithTagMatching(false)),
		presets:  presets,
		logger:   log.WithComponent("prompt"),
		settings: MatchingSettings{
			Enabled:       matcherCfg.Enabled,
			UseFuzzyBest:  matcherCfg.UseFuzzyBest,
			KeepUnmatched: matcherCfg.KeepUnmatched,
			ShowStats:     matcherCfg.ShowStats,
		},
		pattern: pattern,
	}, nil
}

func (s *PromptService) log(ctx context.Context) *logger.Logger {
	if logger.GetRequestID(ctx) != "" {
		return logger.FromContext(ctx)
	}
	return s.logger
}

// Initialize loads the vocabulary when matching is enabled. A failed load
// leaves the service usable with tags passing through unmatched.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - bool: true when the resolver is ready.
//   - error: the load failure, if any.
func (s *PromptService) Initialize(ctx context.Context) (bool, error) {
	if !s.Settings().Enabled {
		logger.CtxInfo(ctx, "Tag matching disabled, skipping vocabulary load")
		return false, nil
	}
	if s.resolver.IsReady() {
		return true, nil
	}

	// Concurrent callers join the store's single in-flight load
	s.loading.Add(1)
	defer s.loading.Add(-1)

	start := time.Now()
	ready, err := s.resolver.Initialize(ctx)
	if err != nil {
		logger.CtxWarn(ctx, "Tag matcher init failed: error=%v", err)
		return false, err
	}
	logger.With(logger.Fields{logger.FieldComponent: "prompt"}).
		WithCount(s.resolver.VocabularySize()).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Tag matcher ready")
	return ready, nil
}

// IsReady reports whether tag matching is enabled and the vocabulary is loaded.
func (s *PromptService) IsReady() bool {
	return s.Settings().Enabled && s.resolver.IsReady()
}

// Status describes the matcher state.
func (s *PromptService) Status() StatusInfo {
	settings := s.Settings()
	info := StatusInfo{
		Settings:       settings,
		VocabularySize: s.resolver.VocabularySize(),
	}
	pattern := s.Pattern()
	info.Pattern, info.Structured = pattern.String(), pattern.Structured()
	if err := s.resolver.FuzzyErr(); err != nil {
		info.FuzzyError = err.Error()
	}
	switch {
	case !settings.Enabled:
		info.Text = StatusDisabled
	case s.resolver.IsReady():
		info.Text, info.Ready = StatusReady, true
	case s.loading.Load() > 0:
		info.Text = StatusLoading
	default:
		info.Text = StatusNotInitialized
	}
	return info
}

// Settings returns the current matching switches.
func (s *PromptService) Settings() MatchingSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies patch and returns the new settings. Enabling
// matching on a service that is not ready triggers a vocabulary load.
func (s *PromptService) UpdateSettings(ctx context.Context, patch MatchingSettingsPatch) MatchingSettings {
	s.mu.Lock()
	if patch.Enabled != nil {
		s.settings.Enabled = *patch.Enabled
	}
	if patch.UseFuzzyBest != nil {
		s.settings.UseFuzzyBest = *patch.UseFuzzyBest
	}
	if patch.KeepUnmatched != nil {
		s.settings.KeepUnmatched = *patch.KeepUnmatched
	}
	if patch.ShowStats != nil {
		s.settings.ShowStats = *patch.ShowStats
	}
	updated := s.settings
	s.mu.Unlock()

	if updated.Enabled && !s.resolver.IsReady() {
		if _, err := s.Initialize(ctx); err != nil {
			s.log(ctx).WithError(err).Warn("Vocabulary load after enabling matching failed")
		}
	}
	return updated
}

// MatchOptions returns the rendering options derived from the current settings.
func (s *PromptService) MatchOptions() domain.MatchOptions {
	settings := s.Settings()
	return domain.MatchOptions{UseFuzzyBest: settings.UseFuzzyBest, KeepUnmatched: settings.KeepUnmatched}
}

func (s *PromptService) optionsOr(opts *domain.MatchOptions) domain.MatchOptions {
	if opts != nil {
		return *opts
	}
	return s.MatchOptions()
}

// ProcessPrompt resolves a comma-separated tag string.
// Parameters:
//   - ctx: request context.
//   - tagString: comma-separated raw tags.
//   - opts: rendering options; nil uses the service settings.
// Returns:
//   - domain.ProcessResult: resolved prompt, per-tag results and stats.
func (s *PromptService) ProcessPrompt(ctx context.Context, tagString string, opts *domain.MatchOptions) domain.ProcessResult {
	res := s.resolver.ProcessPrompt(tagString, s.optionsOr(opts))
	s.logStats(ctx, res.Stats)
	return res
}

// MatchTags resolves already split tags.
func (s *PromptService) MatchTags(ctx context.Context, tags []string) []domain.MatchResult {
	return s.resolver.MatchTags(tags)
}

// SearchTags lists vocabulary entries starting with query, most popular first.
func (s *PromptService) SearchTags(ctx context.Context, query string, limit int) []domain.VocabularyEntry {
	return s.resolver.SearchTags(query, limit)
}

// Synonyms lists the synonym table.
func (s *PromptService) Synonyms() []domain.SynonymEntry {
	return s.resolver.Synonyms().Entries()
}

// Pattern returns the active extraction pattern.
func (s *PromptService) Pattern() *extraction.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pattern
}

// SetPattern replaces the extraction pattern.
// Returns:
//   - error: wraps extraction.ErrMalformedPattern when raw does not compile.
func (s *PromptService) SetPattern(raw string) error {
	p, err := extraction.ParsePattern(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pattern = p
	s.mu.Unlock()
	return nil
}

// ExtractSegments applies the extraction pattern to text. A non-empty
// override is parsed and used instead of the active pattern.
// Returns:
//   - []domain.PromptSegments: one entry per match; empty when nothing matched.
//   - error: wraps extraction.ErrMalformedPattern for a bad override.
func (s *PromptService) ExtractSegments(ctx context.Context, text, override string) ([]domain.PromptSegments, error) {
	pattern := s.Pattern()
	if strings.TrimSpace(override) != "" {
		p, err := extraction.ParsePattern(override)
		if err != nil {
			return nil, err
		}
		pattern = p
	}
	segments := pattern.Extract(text)
	logger.CtxDebug(ctx, "Extracted %d prompt segment(s) using pattern %s", len(segments), pattern)
	for _, seg := range segments {
		logger.CtxDebug(ctx, "Extracted prompt: %s", seg)
	}
	return segments, nil
}

// Compose builds the final prompt for segments using the named preset, or
// the current preset when presetKey is empty.
// Parameters:
//   - ctx: request context.
//   - segments: extracted segments.
//   - presetKey: preset key; empty selects the current preset.
//   - opts: rendering options; nil uses the service settings.
// Returns:
//   - domain.ComposedPrompt: composed prompt pair and stats.
//   - error: non-nil when the preset lookup fails.
func (s *PromptService) Compose(ctx context.Context, segments domain.PromptSegments, presetKey string, opts *domain.MatchOptions) (domain.ComposedPrompt, error) {
	preset, err := s.resolvePreset(ctx, presetKey)
	if err != nil {
		return domain.ComposedPrompt{}, err
	}
	return s.compose(ctx, segments, preset, s.optionsOr(opts)), nil
}

// GeneratePrompts extracts every prompt in a chat message and composes each.
// A non-empty pattern overrides the active extraction pattern.
// Returns:
//   - []domain.ComposedPrompt: one per extracted segment; empty when the
//     message has no image markup.
//   - error: a malformed pattern or a failed preset lookup.
func (s *PromptService) GeneratePrompts(ctx context.Context, text, pattern, presetKey string) ([]domain.ComposedPrompt, error) {
	segments, err := s.ExtractSegments(ctx, text, pattern)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return []domain.ComposedPrompt{}, nil
	}

	preset, err := s.resolvePreset(ctx, presetKey)
	if err != nil {
		return nil, err
	}
	opts := s.MatchOptions()
	out := make([]domain.ComposedPrompt, 0, len(segments))
	for _, seg := range segments {
		out = append(out, s.compose(ctx, seg, preset, opts))
	}
	logger.CtxInfo(ctx, "Generated %d prompt(s)", len(out))
	return out, nil
}

// ComposeGenerated reads one prompt from free-form model output and composes it.
// Returns:
//   - GeneratedPrompt: composed prompt and the extraction strategy used.
//   - error: ErrNoPrompt for blank output, or a preset lookup failure.
func (s *PromptService) ComposeGenerated(ctx context.Context, text, presetKey string) (GeneratedPrompt, error) {
	seg, strategy, ok := extraction.ExtractGenerated(text)
	if !ok {
		return GeneratedPrompt{}, ErrNoPrompt
	}
	preset, err := s.resolvePreset(ctx, presetKey)
	if err != nil {
		return GeneratedPrompt{}, err
	}
	return GeneratedPrompt{
		ComposedPrompt: s.compose(ctx, seg, preset, s.MatchOptions()),
		Strategy:       strategy,
	}, nil
}

func (s *PromptService) compose(ctx context.Context, seg domain.PromptSegments, preset *domain.Preset, opts domain.MatchOptions) domain.ComposedPrompt {
	c := s.verbatim
	if s.Settings().Enabled {
		c = s.matching
	}
	out := c.ComposeDetailed(seg, preset, opts)
	if out.TagMatched {
		s.logStats(ctx, out.Stats)
	}
	return out
}

func (s *PromptService) resolvePreset(ctx context.Context, key string) (*domain.Preset, error) {
	if s.presets == nil {
		return nil, nil
	}
	if key != "" {
		return s.presets.Get(ctx, key)
	}
	return s.presets.Current(ctx)
}

func (s *PromptService) logStats(ctx context.Context, stats domain.MatchStats) {
	if !s.Settings().ShowStats {
		return
	}
	logger.With(logger.Fields{logger.FieldComponent: "prompt"}).
		WithMatchStats(stats).
		Info(ctx, "Tag matching stats")
}
