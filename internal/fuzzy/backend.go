// Package fuzzy provides approximate label search over the tag vocabulary.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// Options tunes similarity scoring. Scores run from 0 (identical) to 1.
type Options struct {
	Threshold      float64 // accept hits scoring at or below this
	Distance       int     // positions over which a late match start costs a full point
	MinMatchLength int     // shorter queries never match
	Limit          int     // maximum hits per search
}

// DefaultOptions returns settings tuned for short tag-like strings.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.3,
		Distance:       50,
		MinMatchLength: 2,
		Limit:          5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.Distance <= 0 {
		o.Distance = d.Distance
	}
	if o.MinMatchLength <= 0 {
		o.MinMatchLength = d.MinMatchLength
	}
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	return o
}

// Hit is one search result: the position of the label in the indexed list and its score.
type Hit struct {
	Index int
	Score float64
}

// Backend is a similarity-search strategy over a fixed list of labels.
type Backend interface {
	// Search returns at most limit hits ordered by ascending score.
	Search(query string, limit int) []Hit
}

// Factory builds a Backend for the given labels.
type Factory func(labels []string) (Backend, error)

// LevenshteinBackend scores labels by edit distance of the query against
// label windows that start on word boundaries.
type LevenshteinBackend struct {
	labels []string
	opts   Options
}

// NewLevenshteinFactory returns a Factory producing LevenshteinBackend instances.
func NewLevenshteinFactory(opts Options) Factory {
	opts = opts.withDefaults()
	return func(labels []string) (Backend, error) {
		lowered := make([]string, len(labels))
		for i, l := range labels {
			lowered[i] = strings.ToLower(l)
		}
		return &LevenshteinBackend{labels: lowered, opts: opts}, nil
	}
}

// Search scores every label against query. Ties keep label order.
func (b *LevenshteinBackend) Search(query string, limit int) []Hit {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < b.opts.MinMatchLength || limit <= 0 {
		return nil
	}

	var hits []Hit
	for i, label := range b.labels {
		if score, ok := b.score(q, label); ok {
			hits = append(hits, Hit{Index: i, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score < hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// score returns the best score of q against label and whether it passes the threshold.
func (b *LevenshteinBackend) score(q, label string) (float64, bool) {
	if idx := strings.Index(label, q); idx >= 0 {
		s := float64(len([]rune(label[:idx]))) / float64(b.opts.Distance)
		return s, s <= b.opts.Threshold
	}

	qr := []rune(q)
	lr := []rune(label)
	slack := int(b.opts.Threshold * float64(len(qr)))
	best := -1.0

	for _, start := range wordStarts(lr) {
		proximity := float64(start) / float64(b.opts.Distance)
		if proximity > b.opts.Threshold {
			break
		}
		for n := len(qr) - slack; n <= len(qr)+slack; n++ {
			if n <= 0 || start+n > len(lr) {
				continue
			}
			edits := matchr.Levenshtein(q, string(lr[start:start+n]))
			s := float64(edits)/float64(len(qr)) + proximity
			if best < 0 || s < best {
				best = s
			}
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, best <= b.opts.Threshold
}

// wordStarts lists rune offsets where a word begins.
func wordStarts(r []rune) []int {
	starts := []int{0}
	for i := 1; i < len(r); i++ {
		prev := r[i-1]
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			starts = append(starts, i)
		}
	}
	return starts
}
