// Package synonym rewrites natural-language phrases into canonical image tags
// before they are resolved against the vocabulary.
package synonym

import (
	"sort"
	"strings"

	"github.com/timmy/picprompt/internal/domain"
)

// Table is a read-only phrase → canonical tag(s) mapping.
// It is safe for concurrent use.
type Table struct {
	phrases map[string]string
}

// New builds a table from phrase → tags pairs. Keys are lowercased and trimmed;
// values containing commas expand to several tags.
// Parameters:
//   - phrases: phrase to canonical tag mapping.
// Returns:
//   - *Table: immutable synonym table.
func New(phrases map[string]string) *Table {
	t := &Table{phrases: make(map[string]string, len(phrases))}
	for k, v := range phrases {
		key := normalize(k)
		if key == "" || strings.TrimSpace(v) == "" {
			continue
		}
		t.phrases[key] = strings.TrimSpace(v)
	}
	return t
}

// Default returns the built-in table.
func Default() *Table {
	return New(defaultPhrases)
}

// With returns a new table holding t's phrases overlaid with extra.
func (t *Table) With(extra map[string]string) *Table {
	merged := make(map[string]string, len(t.phrases)+len(extra))
	for k, v := range t.phrases {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return New(merged)
}

// Expand rewrites tag into one or more canonical phrases.
// The result always holds at least one element: unknown input comes back
// lowercased and trimmed.
func (t *Table) Expand(tag string) []string {
	normalized := normalize(tag)
	mapped, ok := t.phrases[normalized]
	if !ok {
		return []string{normalized}
	}
	if !strings.Contains(mapped, ",") {
		return []string{mapped}
	}
	parts := strings.Split(mapped, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Lookup returns the raw mapped value for phrase.
func (t *Table) Lookup(phrase string) (string, bool) {
	v, ok := t.phrases[normalize(phrase)]
	return v, ok
}

// Single returns the mapped tag for phrase only when the phrase maps to exactly one tag.
func (t *Table) Single(phrase string) (string, bool) {
	v, ok := t.Lookup(phrase)
	if !ok || strings.Contains(v, ",") {
		return "", false
	}
	return v, true
}

// Len returns the number of phrases.
func (t *Table) Len() int {
	return len(t.phrases)
}

// Entries lists the table sorted by phrase.
func (t *Table) Entries() []domain.SynonymEntry {
	keys := make([]string, 0, len(t.phrases))
	for k := range t.phrases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]domain.SynonymEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, domain.SynonymEntry{Phrase: k, Tags: t.Expand(k)})
	}
	return entries
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
