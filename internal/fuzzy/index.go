package fuzzy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/logger"
)

// ErrBackendUnavailable reports that the similarity backend could not be built.
var ErrBackendUnavailable = errors.New("fuzzy backend unavailable")

const defaultCacheSize = 4096

// Index searches vocabulary labels by similarity. The backend is built on
// the first search; if building fails every search returns no results.
type Index struct {
	entries []domain.VocabularyEntry
	factory Factory
	limit   int
	log     *logger.Logger

	once     sync.Once
	built    atomic.Bool
	backend  Backend
	buildErr error

	cache *lru.Cache[string, []domain.VocabularyEntry]
}

// NewIndex creates an index over entries. Nothing is built until the first Search.
// Parameters:
//   - entries: vocabulary entries to index.
//   - factory: backend constructor; nil uses the Levenshtein backend with default options.
//   - limit: maximum results per search; 0 uses the default.
//   - cacheSize: number of cached queries; 0 uses the default.
//   - log: logger; nil uses the default logger.
// Returns:
//   - *Index: lazily built index.
func NewIndex(entries []domain.VocabularyEntry, factory Factory, limit, cacheSize int, log *logger.Logger) *Index {
	if factory == nil {
		factory = NewLevenshteinFactory(DefaultOptions())
	}
	if limit <= 0 {
		limit = DefaultOptions().Limit
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if log == nil {
		log = logger.GetDefault()
	}

	cache, err := lru.New[string, []domain.VocabularyEntry](cacheSize)
	if err != nil {
		cache = nil
	}

	return &Index{
		entries: entries,
		factory: factory,
		limit:   limit,
		log:     log.WithComponent("fuzzy"),
		cache:   cache,
	}
}

func (x *Index) build() {
	defer x.built.Store(true)
	start := time.Now()
	labels := make([]string, len(x.entries))
	for i, e := range x.entries {
		labels[i] = e.Label
	}

	backend, err := x.factory(labels)
	if err == nil && backend == nil {
		err = errors.New("factory returned no backend")
	}
	if err != nil {
		x.buildErr = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		x.log.WithError(err).Warn("Fuzzy backend failed to build, fuzzy matching disabled")
		return
	}
	x.backend = backend

	logger.With(logger.Fields{logger.FieldComponent: "fuzzy"}).
		WithCount(len(labels)).
		WithDuration(time.Since(start).Milliseconds()).
		Debug(context.Background(), "Fuzzy index built")
}

// Search returns up to the configured limit of entries whose labels are
// similar to query, best score first.
func (x *Index) Search(query string) []domain.VocabularyEntry {
	x.once.Do(x.build)
	if x.backend == nil {
		return nil
	}

	key := strings.ToLower(strings.TrimSpace(query))
	if x.cache != nil {
		if cached, ok := x.cache.Get(key); ok {
			return cloneEntries(cached)
		}
	}

	hits := x.backend.Search(key, x.limit)
	out := make([]domain.VocabularyEntry, 0, len(hits))
	for _, h := range hits {
		if h.Index >= 0 && h.Index < len(x.entries) {
			out = append(out, x.entries[h.Index])
		}
	}

	if x.cache != nil {
		x.cache.Add(key, out)
	}
	return cloneEntries(out)
}

// Err returns the build error, if any. It does not trigger a build and
// returns nil until the first Search has built the backend.
func (x *Index) Err() error {
	if !x.built.Load() {
		return nil
	}
	return x.buildErr
}

func cloneEntries(in []domain.VocabularyEntry) []domain.VocabularyEntry {
	out := make([]domain.VocabularyEntry, len(in))
	copy(out, in)
	return out
}
