package matcher

import (
	"strings"

	"github.com/timmy/picprompt/internal/domain"
)

// DefaultMatchOptions prefers the best fuzzy alternative and keeps unmatched tags.
func DefaultMatchOptions() domain.MatchOptions {
	return domain.MatchOptions{UseFuzzyBest: true, KeepUnmatched: true}
}

// ToPromptString renders results as a comma-joined prompt.
//
// Matched results emit the entry's canonical text with spaces for
// underscores. Fuzzy results emit the top alternative when UseFuzzyBest is
// set, else the original tag. Unmatched results emit the original tag only
// when KeepUnmatched is set. Tags that repeat after case and underscore
// folding are dropped, keeping the first.
func ToPromptString(results []domain.MatchResult, opts domain.MatchOptions) string {
	seen := make(map[string]struct{}, len(results))
	tags := make([]string, 0, len(results))

	for _, r := range results {
		tag, ok := renderResult(r, opts)
		if !ok {
			continue
		}
		key := domain.NormalizeTag(tag)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	return strings.Join(tags, ", ")
}

func renderResult(r domain.MatchResult, opts domain.MatchOptions) (string, bool) {
	switch {
	case r.Status == domain.MatchStatusMatched && r.Matched != nil:
		return r.Matched.PromptText(), true
	case r.Status == domain.MatchStatusFuzzy && len(r.Alternatives) > 0:
		if opts.UseFuzzyBest {
			return r.Alternatives[0].PromptText(), true
		}
		return strings.TrimSpace(r.Original), true
	default:
		if !opts.KeepUnmatched {
			return "", false
		}
		return strings.TrimSpace(r.Original), true
	}
}
