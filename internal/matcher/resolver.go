// Package matcher resolves free-form tag text against the canonical vocabulary.
//
// Each tag is first expanded through the synonym table, then resolved by the
// first tier that succeeds: exact label, single-tag synonym, label prefix,
// fuzzy similarity. Tags that pass every tier are reported unmatched.
package matcher

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/fuzzy"
	"github.com/timmy/picprompt/internal/logger"
	"github.com/timmy/picprompt/internal/synonym"
	"github.com/timmy/picprompt/internal/vocabulary"
)

const (
	// MaxAlternatives caps prefix and fuzzy alternatives.
	MaxAlternatives = 5
	// DefaultSearchLimit is the SearchTags limit when none is given.
	DefaultSearchLimit = 10
	// MinSearchLength is the shortest query SearchTags answers.
	MinSearchLength = 2
)

// Config holds optional Resolver collaborators.
type Config struct {
	Synonyms     *synonym.Table // nil uses synonym.Default()
	FuzzyEnabled bool
	FuzzyFactory fuzzy.Factory // nil uses the Levenshtein backend
	CacheSize    int
	Log          *logger.Logger
}

// Resolver owns a vocabulary, a synonym table and a lazily built fuzzy index.
// All methods are safe for concurrent use and never fail: before the
// vocabulary is loaded every tag resolves to unmatched.
type Resolver struct {
	store    *vocabulary.Store
	synonyms *synonym.Table
	cfg      Config
	log      *logger.Logger

	fuzzyOnce sync.Once
	index     atomic.Pointer[fuzzy.Index]
}

// NewResolver creates a resolver over store.
// Parameters:
//   - store: vocabulary store, loaded by Initialize.
//   - cfg: optional collaborators.
// Returns:
//   - *Resolver: resolver in the not-ready state until the store loads.
func NewResolver(store *vocabulary.Store, cfg Config) *Resolver {
	if cfg.Synonyms == nil {
		cfg.Synonyms = synonym.Default()
	}
	if cfg.Log == nil {
		cfg.Log = logger.GetDefault()
	}
	return &Resolver{
		store:    store,
		synonyms: cfg.Synonyms,
		cfg:      cfg,
		log:      cfg.Log.WithComponent("matcher"),
	}
}

// Initialize loads the vocabulary. It reports readiness; the error carries
// the load failure, which leaves the resolver usable but not ready.
func (r *Resolver) Initialize(ctx context.Context) (bool, error) {
	if err := r.store.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// IsReady reports whether the vocabulary is loaded.
func (r *Resolver) IsReady() bool {
	return r.store.IsReady()
}

// Synonyms returns the synonym table in use.
func (r *Resolver) Synonyms() *synonym.Table {
	return r.synonyms
}

// VocabularySize returns the number of loaded entries.
func (r *Resolver) VocabularySize() int {
	return r.store.Len()
}

// MatchTags resolves each raw tag. Synonym expansion may turn one raw tag
// into several results, kept in expansion order.
func (r *Resolver) MatchTags(rawTags []string) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(rawTags))
	if !r.IsReady() {
		for _, tag := range rawTags {
			results = append(results, domain.NewUnmatched(tag))
		}
		return results
	}

	for _, tag := range rawTags {
		if strings.TrimSpace(tag) == "" {
			results = append(results, domain.NewUnmatched(tag))
			continue
		}
		for _, expanded := range r.synonyms.Expand(tag) {
			results = append(results, r.matchOne(expanded))
		}
	}
	return results
}

// ParseAndMatchTags splits tagString on commas, drops blank pieces and resolves the rest.
func (r *Resolver) ParseAndMatchTags(tagString string) []domain.MatchResult {
	return r.MatchTags(SplitTags(tagString))
}

// SearchTags lists entries whose label starts with query, most popular
// first. Queries shorter than MinSearchLength return nothing.
func (r *Resolver) SearchTags(query string, limit int) []domain.VocabularyEntry {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if !r.IsReady() || len([]rune(domain.NormalizeTag(query))) < MinSearchLength {
		return []domain.VocabularyEntry{}
	}
	hits := r.store.WithPrefix(query, limit)
	if hits == nil {
		return []domain.VocabularyEntry{}
	}
	return hits
}

// ProcessPrompt resolves a comma-separated tag string and renders it back to prompt text.
func (r *Resolver) ProcessPrompt(tagString string, opts domain.MatchOptions) domain.ProcessResult {
	results := r.ParseAndMatchTags(tagString)
	return domain.ProcessResult{
		Original: tagString,
		Prompt:   ToPromptString(results, opts),
		Results:  results,
		Stats:    domain.StatsOf(results),
	}
}

func (r *Resolver) matchOne(tag string) domain.MatchResult {
	normalized := domain.NormalizeTag(tag)
	if normalized == "" {
		return domain.NewUnmatched(tag)
	}

	if entry, ok := r.store.Lookup(normalized); ok {
		return domain.NewMatched(tag, entry)
	}

	if target, ok := r.synonyms.Single(normalized); ok {
		if entry, ok := r.store.Lookup(target); ok {
			return domain.NewMatched(tag, entry)
		}
	}

	if prefix := r.store.WithPrefix(normalized, MaxAlternatives); len(prefix) > 0 {
		return domain.NewFuzzy(tag, prefix)
	}

	if idx := r.fuzzyIndex(); idx != nil {
		alternatives := idx.Search(normalized)
		if len(alternatives) > MaxAlternatives {
			alternatives = alternatives[:MaxAlternatives]
		}
		vocabulary.SortByCount(alternatives)
		return domain.NewFuzzy(tag, alternatives)
	}

	return domain.NewUnmatched(tag)
}

// fuzzyIndex builds the index on first use. It is only called once the store is ready.
func (r *Resolver) fuzzyIndex() *fuzzy.Index {
	if !r.cfg.FuzzyEnabled {
		return nil
	}
	r.fuzzyOnce.Do(func() {
		r.index.Store(fuzzy.NewIndex(r.store.Entries(), r.cfg.FuzzyFactory, MaxAlternatives, r.cfg.CacheSize, r.cfg.Log))
	})
	return r.index.Load()
}

// FuzzyErr reports why the fuzzy tier is unavailable, or nil. It never
// builds the index: before the first fuzzy-tier query it returns nil.
func (r *Resolver) FuzzyErr() error {
	if idx := r.index.Load(); idx != nil {
		return idx.Err()
	}
	return nil
}

// SplitTags splits s on commas, trims each piece and drops empty ones.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
