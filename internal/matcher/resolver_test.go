package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/fuzzy"
	"github.com/timmy/picprompt/internal/synonym"
	"github.com/timmy/picprompt/internal/vocabulary"
)

var scenarioVocabulary = []domain.VocabularyEntry{
	{Label: "1girl", Count: 1000},
	{Label: "smile", Count: 500},
	{Label: "blue_hair", Count: 300},
}

var richVocabulary = []domain.VocabularyEntry{
	{Label: "1girl", Count: 1000},
	{Label: "1boy", Count: 900},
	{Label: "smile", Count: 500},
	{Label: "smiley_face", Count: 20},
	{Label: "long_hair", Count: 800},
	{Label: "long_sleeves", Count: 850},
	{Label: "short_hair", Count: 600},
	{Label: "looking_at_viewer", Value: "looking_at_viewer", Count: 700},
	{Label: "school_uniform", Count: 650},
	{Label: "blue_eyes", Count: 400},
}

func newReadyResolver(t *testing.T, entries []domain.VocabularyEntry, fuzzyEnabled bool) *Resolver {
	t.Helper()
	r := NewResolver(vocabulary.NewStore(vocabulary.NewStaticSource(entries), nil), Config{FuzzyEnabled: fuzzyEnabled})
	ok, err := r.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return r
}

func TestResolver_ScenarioA(t *testing.T) {
	for _, fuzzyEnabled := range []bool{false, true} {
		r := newReadyResolver(t, scenarioVocabulary, fuzzyEnabled)

		res := r.ProcessPrompt("1girl, smiling, blonde", domain.MatchOptions{UseFuzzyBest: true, KeepUnmatched: true})
		assert.Equal(t, "1girl, smile, blonde_hair", res.Prompt)
		require.Len(t, res.Results, 3)

		assert.Equal(t, domain.MatchStatusMatched, res.Results[1].Status)
		assert.Equal(t, "smile", res.Results[1].Matched.Label)

		blonde := res.Results[2]
		assert.Equal(t, domain.MatchStatusUnmatched, blonde.Status)
		assert.Equal(t, "blonde_hair", blonde.Original)
		assert.Nil(t, blonde.Matched)
		assert.Empty(t, blonde.Alternatives)

		assert.Equal(t, domain.MatchStats{Total: 3, Matched: 2, Unmatched: 1}, res.Stats)
	}
}

func TestResolver_ScenarioB_Dedup(t *testing.T) {
	r := newReadyResolver(t, scenarioVocabulary, true)
	res := r.ProcessPrompt("smile, smile", DefaultMatchOptions())
	assert.Equal(t, "smile", res.Prompt)
	assert.Len(t, res.Results, 2)
}

func TestResolver_ScenarioC_EmptyTags(t *testing.T) {
	r := newReadyResolver(t, scenarioVocabulary, true)

	tests := []string{"", " , ,", "1girl,,smile", ", 1girl , , smile ,"}
	for _, in := range tests {
		res := r.ProcessPrompt(in, DefaultMatchOptions())
		if strings.Contains(in, "1girl") {
			assert.Equal(t, "1girl, smile", res.Prompt, "input %q", in)
		} else {
			assert.Equal(t, "", res.Prompt, "input %q", in)
			assert.Empty(t, res.Results)
		}
	}

	results := r.MatchTags([]string{"1girl", "", "   "})
	require.Len(t, results, 3)
	assert.Equal(t, domain.MatchStatusUnmatched, results[1].Status)
	assert.Equal(t, domain.MatchStatusUnmatched, results[2].Status)
	assert.Equal(t, "1girl", ToPromptString(results, DefaultMatchOptions()))
}

func TestResolver_Tiers(t *testing.T) {
	r := newReadyResolver(t, richVocabulary, true)

	tests := []struct {
		name       string
		tag        string
		wantStatus domain.MatchStatus
		wantFirst  string
	}{
		{name: "exact", tag: "long_hair", wantStatus: domain.MatchStatusMatched, wantFirst: "long_hair"},
		{name: "exact with spaces and case", tag: "Long Hair", wantStatus: domain.MatchStatusMatched, wantFirst: "long_hair"},
		{name: "synonym", tag: "looking at camera", wantStatus: domain.MatchStatusMatched, wantFirst: "looking_at_viewer"},
		{name: "prefix ranked by count", tag: "lon", wantStatus: domain.MatchStatusFuzzy, wantFirst: "long_sleeves"},
		{name: "fuzzy", tag: "schol uniform", wantStatus: domain.MatchStatusFuzzy, wantFirst: "school_uniform"},
		{name: "unmatched", tag: "qzxv!!", wantStatus: domain.MatchStatusUnmatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.MatchTags([]string{tt.tag})
			require.Len(t, results, 1)
			got := results[0]
			assert.Equal(t, tt.wantStatus, got.Status)

			switch got.Status {
			case domain.MatchStatusMatched:
				require.NotNil(t, got.Matched)
				assert.Empty(t, got.Alternatives)
				assert.Equal(t, tt.wantFirst, got.Matched.Label)
			case domain.MatchStatusFuzzy:
				assert.Nil(t, got.Matched)
				require.NotEmpty(t, got.Alternatives)
				assert.LessOrEqual(t, len(got.Alternatives), MaxAlternatives)
				assert.Equal(t, tt.wantFirst, got.Alternatives[0].Label)
			default:
				assert.Nil(t, got.Matched)
				assert.Empty(t, got.Alternatives)
			}
		})
	}
}

func TestResolver_ExactBeatsPopularPrefix(t *testing.T) {
	r := newReadyResolver(t, []domain.VocabularyEntry{
		{Label: "smile", Count: 1},
		{Label: "smile_lines", Count: 100000},
	}, true)

	results := r.MatchTags([]string{"smile"})
	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchStatusMatched, results[0].Status)
	assert.Equal(t, "smile", results[0].Matched.Label)
}

func TestResolver_SynonymFanOut(t *testing.T) {
	r := newReadyResolver(t, richVocabulary, true)

	results := r.MatchTags([]string{"duo", "smile"})
	require.Len(t, results, 3)
	assert.Equal(t, "1boy", results[0].Matched.Label)
	assert.Equal(t, "1girl", results[1].Matched.Label)
	assert.Equal(t, "smile", results[2].Matched.Label)
}

func TestResolver_FuzzyReRankedByCount(t *testing.T) {
	r := newReadyResolver(t, []domain.VocabularyEntry{
		{Label: "cat_ears", Count: 10},
		{Label: "animal_ears", Count: 50},
		{Label: "fox_ears", Count: 900},
	}, true)

	results := r.MatchTags([]string{"ears"})
	require.Len(t, results, 1)
	require.Equal(t, domain.MatchStatusFuzzy, results[0].Status)

	var labels []string
	for _, alt := range results[0].Alternatives {
		labels = append(labels, alt.Label)
	}
	assert.Equal(t, []string{"fox_ears", "animal_ears", "cat_ears"}, labels)
}

func TestResolver_FuzzyBackendUnavailable(t *testing.T) {
	failing := func(labels []string) (fuzzy.Backend, error) {
		return nil, errors.New("backend not installed")
	}
	r := NewResolver(vocabulary.NewStore(vocabulary.NewStaticSource(richVocabulary), nil), Config{
		FuzzyEnabled: true,
		FuzzyFactory: failing,
	})
	_, err := r.Initialize(context.Background())
	require.NoError(t, err)

	results := r.MatchTags([]string{"schol uniform", "long_hair", "lon"})
	assert.Equal(t, domain.MatchStatusUnmatched, results[0].Status)
	assert.Equal(t, domain.MatchStatusMatched, results[1].Status)
	assert.Equal(t, domain.MatchStatusFuzzy, results[2].Status)
	assert.ErrorIs(t, r.FuzzyErr(), fuzzy.ErrBackendUnavailable)
}

func TestResolver_NotReady(t *testing.T) {
	r := NewResolver(vocabulary.NewStore(vocabulary.NewRawSource([]byte(`[]`)), nil), Config{FuzzyEnabled: true})
	ok, err := r.Initialize(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, vocabulary.ErrLoad)
	assert.False(t, r.IsReady())

	results := r.MatchTags([]string{"1girl", "duo"})
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, domain.MatchStatusUnmatched, res.Status)
	}
	assert.Equal(t, "duo", results[1].Original)

	res := r.ProcessPrompt("1girl, smiling", DefaultMatchOptions())
	assert.Equal(t, "1girl, smiling", res.Prompt)
	assert.Empty(t, r.SearchTags("1g", 10))
}

func TestResolver_Deterministic(t *testing.T) {
	r := newReadyResolver(t, richVocabulary, true)
	input := []string{"long", "smiling", "schol uniform", "duo", "blonde", "lookin"}

	first := r.MatchTags(input)
	second := r.MatchTags(input)
	assert.Equal(t, first, second)
}

func TestResolver_OrderPreserved(t *testing.T) {
	r := newReadyResolver(t, richVocabulary, true)
	res := r.ProcessPrompt("short hair, blue eyes, 1girl, smile", DefaultMatchOptions())
	assert.Equal(t, "short hair, blue eyes, 1girl, smile", res.Prompt)
}

func TestResolver_SearchTags(t *testing.T) {
	r := newReadyResolver(t, richVocabulary, true)

	got := r.SearchTags("lo", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "long_sleeves", got[0].Label)
	assert.Equal(t, "long_hair", got[1].Label)
	assert.Equal(t, "looking_at_viewer", got[2].Label)

	assert.Len(t, r.SearchTags("lo", 1), 1)
	assert.Empty(t, r.SearchTags("l", 10))
	assert.Empty(t, r.SearchTags("zz", 10))
}

func TestResolver_CustomSynonyms(t *testing.T) {
	table := synonym.New(map[string]string{"grin": "smile"})
	r := NewResolver(vocabulary.NewStore(vocabulary.NewStaticSource(richVocabulary), nil), Config{Synonyms: table})
	_, err := r.Initialize(context.Background())
	require.NoError(t, err)

	results := r.MatchTags([]string{"grin"})
	assert.Equal(t, domain.MatchStatusMatched, results[0].Status)
	assert.Same(t, table, r.Synonyms())
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitTags(" a, b c ,, d ,"))
	assert.Empty(t, SplitTags(""))
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.MatcherConfig{
		ExtraSynonyms: map[string]string{"grin": "smile"},
		Fuzzy:         config.FuzzyConfig{Enabled: true, Threshold: 0.3},
	}, nil)
	assert.True(t, cfg.FuzzyEnabled)
	require.NotNil(t, cfg.FuzzyFactory)

	r := NewResolver(vocabulary.NewStore(vocabulary.NewStaticSource(scenarioVocabulary), nil), cfg)
	_, err := r.Initialize(context.Background())
	require.NoError(t, err)

	res := r.ProcessPrompt("grin, smiling, smilr", DefaultMatchOptions())
	assert.Equal(t, "smile", res.Prompt)
	assert.Equal(t, 2, res.Stats.Matched)
	assert.Equal(t, 1, res.Stats.Fuzzy)
}
