package domain

import "strings"

// VocabularyEntry is one canonical image-generation tag.
// Value is optional; when empty the Label is the canonical form.
type VocabularyEntry struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
	Count int    `json:"count"`
}

// Canonical returns the canonical tag text (Value when set, otherwise Label).
// Parameters: none.
// Returns:
//   - string: canonical tag text.
func (e VocabularyEntry) Canonical() string {
	if e.Value != "" {
		return e.Value
	}
	return e.Label
}

// PromptText returns the canonical tag with underscores replaced by spaces,
// which is the form emitted into a prompt.
func (e VocabularyEntry) PromptText() string {
	return strings.ReplaceAll(e.Canonical(), "_", " ")
}

// SynonymEntry maps a natural-language phrase to one or more canonical tags.
type SynonymEntry struct {
	Phrase string   `json:"phrase"`
	Tags   []string `json:"tags"`
}

// MatchStatus is the resolution tier outcome of a single tag.
// Values include MatchStatusMatched, MatchStatusFuzzy, and MatchStatusUnmatched.
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusFuzzy     MatchStatus = "fuzzy"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

// MatchResult is the resolution of one expanded raw tag.
//
// Status is matched iff Matched is non-nil and Alternatives is empty,
// fuzzy iff Matched is nil and Alternatives is non-empty,
// unmatched iff both are empty.
type MatchResult struct {
	Original     string            `json:"original"`
	Matched      *VocabularyEntry  `json:"matched"`
	Alternatives []VocabularyEntry `json:"alternatives"`
	Status       MatchStatus       `json:"status"`
}

// NewMatched builds a matched result.
func NewMatched(original string, entry VocabularyEntry) MatchResult {
	return MatchResult{
		Original:     original,
		Matched:      &entry,
		Alternatives: []VocabularyEntry{},
		Status:       MatchStatusMatched,
	}
}

// NewFuzzy builds a fuzzy result. An empty alternatives slice yields an unmatched result.
func NewFuzzy(original string, alternatives []VocabularyEntry) MatchResult {
	if len(alternatives) == 0 {
		return NewUnmatched(original)
	}
	return MatchResult{
		Original:     original,
		Alternatives: alternatives,
		Status:       MatchStatusFuzzy,
	}
}

// NewUnmatched builds an unmatched result.
func NewUnmatched(original string) MatchResult {
	return MatchResult{
		Original:     original,
		Alternatives: []VocabularyEntry{},
		Status:       MatchStatusUnmatched,
	}
}

// MatchOptions controls how match results are rendered back to prompt text.
type MatchOptions struct {
	UseFuzzyBest  bool `json:"useFuzzyBest"`
	KeepUnmatched bool `json:"keepUnmatched"`
}

// MatchStats counts results by tier.
type MatchStats struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Fuzzy     int `json:"fuzzy"`
	Unmatched int `json:"unmatched"`
}

// StatsOf counts the given results by status.
// Parameters:
//   - results: match results to count.
// Returns:
//   - MatchStats: per-tier counts.
func StatsOf(results []MatchResult) MatchStats {
	stats := MatchStats{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case MatchStatusMatched:
			stats.Matched++
		case MatchStatusFuzzy:
			stats.Fuzzy++
		default:
			stats.Unmatched++
		}
	}
	return stats
}

// ProcessResult is the outcome of resolving a comma-separated tag string.
type ProcessResult struct {
	Original string        `json:"original"`
	Prompt   string        `json:"prompt"`
	Results  []MatchResult `json:"results"`
	Stats    MatchStats    `json:"stats"`
}

// NormalizeTag folds a tag into its comparison form: trimmed, lowercased,
// with underscores treated as spaces.
func NormalizeTag(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
}
