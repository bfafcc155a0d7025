// Package composer assembles the final image prompt from extracted segments,
// resolved character tags and the active preset.
package composer

import (
	"strings"

	"github.com/timmy/picprompt/internal/domain"
)

const (
	characterSeparator = "|"
	blockJoiner        = " | "
	partJoiner         = ", "
	characterMarker    = "| "
)

// TagProcessor resolves a comma-separated tag string.
type TagProcessor interface {
	IsReady() bool
	ProcessPrompt(tagString string, opts domain.MatchOptions) domain.ProcessResult
}

// Option configures a Composer.
type Option func(*Composer)

// WithTagMatching toggles tag resolution. When off, character text passes through unchanged.
func WithTagMatching(enabled bool) Option {
	return func(c *Composer) {
		c.matching = enabled
	}
}

// Composer builds prompts. It holds no per-call state and is safe for concurrent use.
type Composer struct {
	tags     TagProcessor
	matching bool
}

// New creates a composer. Tag matching is on by default; a nil tags disables it.
func New(tags TagProcessor, opts ...Option) *Composer {
	c := &Composer{tags: tags, matching: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns the final prompt string for segments under preset.
func (c *Composer) Compose(segments domain.PromptSegments, preset *domain.Preset, opts domain.MatchOptions) string {
	return c.ComposeDetailed(segments, preset, opts).Prompt
}

// ComposeDetailed composes the prompt and also reports the negative prompt
// and aggregate match statistics over every character block.
//
// Parts are ordered camera, scene, preset prefix, "| " + characters,
// preset suffix. Empty parts are dropped. A nil preset contributes no
// prefix, suffix or negative prompt.
func (c *Composer) ComposeDetailed(segments domain.PromptSegments, preset *domain.Preset, opts domain.MatchOptions) domain.ComposedPrompt {
	characters, stats, matched := c.resolveCharacters(segments.Characters, opts)

	parts := make([]string, 0, 5)
	parts = appendNonEmpty(parts, segments.Camera)
	parts = appendNonEmpty(parts, segments.Scene)
	parts = appendNonEmpty(parts, preset.Prefix())
	if characters != "" {
		parts = append(parts, characterMarker+characters)
	}
	parts = appendNonEmpty(parts, preset.Suffix())

	return domain.ComposedPrompt{
		Segments:         segments,
		Prompt:           strings.Join(parts, partJoiner),
		NegativePrompt:   preset.Negative(),
		TagMatched:       matched,
		Stats:            stats,
		AdvancedSettings: preset.ActiveAdvancedSettings(),
	}
}

// resolveCharacters runs tag matching over each "|"-separated character block
// and joins the surviving blocks with " | ".
func (c *Composer) resolveCharacters(characters string, opts domain.MatchOptions) (string, domain.MatchStats, bool) {
	trimmed := strings.TrimSpace(characters)
	if trimmed == "" || !c.matchingActive() {
		return trimmed, domain.MatchStats{}, false
	}

	var stats domain.MatchStats
	blocks := strings.Split(trimmed, characterSeparator)
	resolved := make([]string, 0, len(blocks))
	for _, block := range blocks {
		res := c.tags.ProcessPrompt(block, opts)
		stats = addStats(stats, res.Stats)
		if p := strings.TrimSpace(res.Prompt); p != "" {
			resolved = append(resolved, p)
		}
	}
	return strings.Join(resolved, blockJoiner), stats, true
}

func (c *Composer) matchingActive() bool {
	return c.matching && c.tags != nil && c.tags.IsReady()
}

func appendNonEmpty(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(parts, s)
	}
	return parts
}

func addStats(a, b domain.MatchStats) domain.MatchStats {
	return domain.MatchStats{
		Total:     a.Total + b.Total,
		Matched:   a.Matched + b.Matched,
		Fuzzy:     a.Fuzzy + b.Fuzzy,
		Unmatched: a.Unmatched + b.Unmatched,
	}
}
