// Package vocabulary loads and indexes the canonical tag vocabulary.
package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/logger"
	"golang.org/x/sync/singleflight"
)

const loadKey = "vocabulary"

// Store holds the vocabulary in memory. It is read-only once loaded and
// safe for concurrent use.
type Store struct {
	source Source
	log    *logger.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	ready   bool
	entries []domain.VocabularyEntry
	labels  []string       // normalized labels, parallel to entries
	byLabel map[string]int // normalized label -> first entry index
}

// NewStore creates an unloaded store.
// Parameters:
//   - source: vocabulary document source.
//   - log: logger; nil uses the default logger.
// Returns:
//   - *Store: store awaiting Load.
func NewStore(source Source, log *logger.Logger) *Store {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Store{
		source: source,
		log:    log.WithComponent("vocabulary"),
	}
}

// Load reads the vocabulary once. Concurrent callers share one in-flight
// read; once loaded, further calls return nil immediately. A failed load is
// not remembered, so a later call retries. The shared read ignores the
// cancellation of whichever caller started it; sources bound it with their
// own timeouts.
func (s *Store) Load(ctx context.Context) error {
	if s.IsReady() {
		return nil
	}

	_, err, _ := s.group.Do(loadKey, func() (interface{}, error) {
		if s.IsReady() {
			return nil, nil
		}
		return nil, s.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		s.log.WithError(err).Warn("Vocabulary load failed, matcher stays not ready")
	}
	return err
}

func (s *Store) load(ctx context.Context) error {
	start := time.Now()

	rc, err := s.source.Open(ctx)
	if err != nil {
		return &LoadError{Source: s.source.Name(), Err: err}
	}
	defer rc.Close()

	var raw []domain.VocabularyEntry
	if err := json.NewDecoder(rc).Decode(&raw); err != nil {
		return &LoadError{Source: s.source.Name(), Err: fmt.Errorf("decode: %w", err)}
	}

	entries := make([]domain.VocabularyEntry, 0, len(raw))
	for _, e := range raw {
		if strings.TrimSpace(e.Label) == "" {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return &LoadError{Source: s.source.Name(), Err: ErrEmpty}
	}

	labels := make([]string, len(entries))
	byLabel := make(map[string]int, len(entries))
	for i, e := range entries {
		labels[i] = domain.NormalizeTag(e.Label)
		if _, dup := byLabel[labels[i]]; !dup {
			byLabel[labels[i]] = i
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.labels = labels
	s.byLabel = byLabel
	s.ready = true
	s.mu.Unlock()

	logger.With(logger.Fields{logger.FieldSource: s.source.Name()}).
		WithCount(len(entries)).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Vocabulary loaded")
	return nil
}

// IsReady reports whether a load has succeeded.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns the loaded entries in document order. The slice must not be modified.
func (s *Store) Entries() []domain.VocabularyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Lookup finds the first entry whose normalized label equals tag's normalized form.
func (s *Store) Lookup(tag string) (domain.VocabularyEntry, bool) {
	key := domain.NormalizeTag(tag)
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byLabel[key]
	if !ok {
		return domain.VocabularyEntry{}, false
	}
	return s.entries[i], true
}

// WithPrefix returns up to limit entries whose normalized label starts with
// prefix's normalized form, ordered by count descending. Equal counts keep
// document order. An empty prefix matches nothing.
func (s *Store) WithPrefix(prefix string, limit int) []domain.VocabularyEntry {
	p := domain.NormalizeTag(prefix)
	if p == "" || limit <= 0 {
		return nil
	}

	s.mu.RLock()
	var hits []domain.VocabularyEntry
	for i, label := range s.labels {
		if strings.HasPrefix(label, p) {
			hits = append(hits, s.entries[i])
		}
	}
	s.mu.RUnlock()

	SortByCount(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// SortByCount orders entries by count descending, keeping the relative order of ties.
func SortByCount(entries []domain.VocabularyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
}
