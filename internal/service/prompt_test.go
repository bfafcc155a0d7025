package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/extraction"
	"github.com/timmy/picprompt/internal/fuzzy"
	"github.com/timmy/picprompt/internal/matcher"
	"github.com/timmy/picprompt/internal/vocabulary"
)

var errNotFound = errors.New("preset not found")

type stubPresets struct {
	current *domain.Preset
	byKey   map[string]*domain.Preset
}

func (s *stubPresets) Current(ctx context.Context) (*domain.Preset, error) {
	return s.current, nil
}

func (s *stubPresets) Get(ctx context.Context, key string) (*domain.Preset, error) {
	if p, ok := s.byKey[key]; ok {
		return p, nil
	}
	return nil, errNotFound
}

var testVocabulary = []domain.VocabularyEntry{
	{Label: "1girl", Count: 1000},
	{Label: "smile", Count: 500},
	{Label: "long_hair", Count: 800},
	{Label: "from_above", Count: 100},
}

func defaultMatcherConfig() config.MatcherConfig {
	return config.MatcherConfig{
		Enabled:       true,
		UseFuzzyBest:  true,
		KeepUnmatched: true,
		Fuzzy:         config.FuzzyConfig{Enabled: true},
	}
}

func newTestService(t *testing.T, src vocabulary.Source, presets PresetProvider, cfg config.MatcherConfig, pattern string) *PromptService {
	t.Helper()
	resolver := matcher.NewResolver(vocabulary.NewStore(src, nil), matcher.Config{FuzzyEnabled: cfg.Fuzzy.Enabled})
	svc, err := NewPromptService(resolver, presets, cfg, config.ExtractionConfig{Pattern: pattern}, nil)
	require.NoError(t, err)
	return svc
}

// blockingSource counts opens and fails each one after release is closed.
type blockingSource struct {
	opens   atomic.Int32
	release chan struct{}
}

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	b.opens.Add(1)
	<-b.release
	return nil, errors.New("upstream unavailable")
}

func TestPromptService_InitializeAndStatus(t *testing.T) {
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), "")
	assert.Equal(t, StatusNotInitialized, svc.Status().Text)

	ready, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)

	status := svc.Status()
	assert.Equal(t, StatusReady, status.Text)
	assert.True(t, status.Ready)
	assert.Equal(t, len(testVocabulary), status.VocabularySize)
	assert.Equal(t, config.DefaultExtractionPattern, status.Pattern)
	assert.False(t, status.Structured)
	assert.Empty(t, status.FuzzyError)
}

func TestPromptService_ConcurrentInitializeSharesFailedLoad(t *testing.T) {
	src := &blockingSource{release: make(chan struct{})}
	svc := newTestService(t, src, nil, defaultMatcherConfig(), "")

	const callers = 5
	var wg sync.WaitGroup
	ready := make([]bool, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ready[i], errs[i] = svc.Initialize(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return svc.loading.Load() == callers }, time.Second, time.Millisecond)
	assert.Equal(t, StatusLoading, svc.Status().Text)
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.opens.Load())
	for i := 0; i < callers; i++ {
		assert.False(t, ready[i])
		assert.ErrorIs(t, errs[i], vocabulary.ErrLoad)
	}
	assert.Equal(t, StatusNotInitialized, svc.Status().Text)
}

func TestPromptService_FuzzyBackendBuiltOnDemand(t *testing.T) {
	var builds atomic.Int32
	factory := func(labels []string) (fuzzy.Backend, error) {
		builds.Add(1)
		return nil, errors.New("backend not installed")
	}
	resolver := matcher.NewResolver(
		vocabulary.NewStore(vocabulary.NewStaticSource(testVocabulary), nil),
		matcher.Config{FuzzyEnabled: true, FuzzyFactory: factory},
	)
	svc, err := NewPromptService(resolver, nil, defaultMatcherConfig(), config.ExtractionConfig{}, nil)
	require.NoError(t, err)

	_, err = svc.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(0), builds.Load())

	svc.ProcessPrompt(context.Background(), "1girl, smile", nil)
	assert.Equal(t, int32(0), builds.Load())
	assert.Empty(t, svc.Status().FuzzyError)

	res := svc.ProcessPrompt(context.Background(), "qzxv", nil)
	assert.Equal(t, 1, res.Stats.Unmatched)
	assert.Equal(t, int32(1), builds.Load())
	assert.Contains(t, svc.Status().FuzzyError, "backend not installed")
}

func TestPromptService_DisabledSkipsLoad(t *testing.T) {
	cfg := defaultMatcherConfig()
	cfg.Enabled = false
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, cfg, "")

	ready, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Equal(t, StatusDisabled, svc.Status().Text)

	enabled := true
	svc.UpdateSettings(context.Background(), MatchingSettingsPatch{Enabled: &enabled})
	assert.True(t, svc.IsReady())
}

func TestPromptService_LoadFailureDegrades(t *testing.T) {
	svc := newTestService(t, vocabulary.NewRawSource([]byte(`[]`)), nil, defaultMatcherConfig(), "")

	ready, err := svc.Initialize(context.Background())
	assert.False(t, ready)
	assert.ErrorIs(t, err, vocabulary.ErrLoad)
	assert.Equal(t, StatusNotInitialized, svc.Status().Text)

	res := svc.ProcessPrompt(context.Background(), "1girl, smiling", nil)
	assert.Equal(t, "1girl, smiling", res.Prompt)
	assert.Equal(t, 2, res.Stats.Unmatched)

	out, err := svc.GeneratePrompts(context.Background(), `<pic prompt="smiling, 1girl">`, "", "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "| smiling, 1girl", out[0].Prompt)
	assert.False(t, out[0].TagMatched)
}

func TestPromptService_GeneratePrompts(t *testing.T) {
	presets := &stubPresets{
		current: &domain.Preset{Key: "default", PrefixPrompt: "masterpiece", NegativePrompt: "lowres"},
		byKey: map[string]*domain.Preset{
			"plain": {Key: "plain"},
		},
	}
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), presets, defaultMatcherConfig(), "")
	_, err := svc.Initialize(context.Background())
	require.NoError(t, err)

	msg := `She turns. <pic prompt="1girl, smiling"> Later. <pic prompt="long hair">`
	out, err := svc.GeneratePrompts(context.Background(), msg, "", "")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "masterpiece, | 1girl, smile", out[0].Prompt)
	assert.Equal(t, "lowres", out[0].NegativePrompt)
	assert.Equal(t, "masterpiece, | long hair", out[1].Prompt)

	plain, err := svc.GeneratePrompts(context.Background(), msg, "", "plain")
	require.NoError(t, err)
	assert.Equal(t, "| 1girl, smile", plain[0].Prompt)

	_, err = svc.GeneratePrompts(context.Background(), msg, "", "missing")
	assert.ErrorIs(t, err, errNotFound)

	none, err := svc.GeneratePrompts(context.Background(), "no markup", "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPromptService_StructuredPattern(t *testing.T) {
	pattern := `/<pic\s+(?:camera="([^"]*)")?\s*(?:scene="([^"]*)")?\s*prompt="([^"]*)"[^>]*>/g`
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), pattern)
	_, err := svc.Initialize(context.Background())
	require.NoError(t, err)

	out, err := svc.GeneratePrompts(context.Background(), `<pic camera="from above" scene="bedroom" prompt="smiling">`, "", "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "from above, bedroom, | smile", out[0].Prompt)
	assert.Equal(t, domain.PromptSegments{Camera: "from above", Scene: "bedroom", Characters: "smiling"}, out[0].Segments)
	assert.True(t, svc.Status().Structured)
}

func TestPromptService_MalformedPattern(t *testing.T) {
	resolver := matcher.NewResolver(vocabulary.NewStore(vocabulary.NewStaticSource(testVocabulary), nil), matcher.Config{})
	_, err := NewPromptService(resolver, nil, defaultMatcherConfig(), config.ExtractionConfig{Pattern: "/(unclosed/g"}, nil)
	assert.ErrorIs(t, err, extraction.ErrMalformedPattern)

	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), "")
	assert.ErrorIs(t, svc.SetPattern("/(?<=a)b/"), extraction.ErrMalformedPattern)
	_, err = svc.ExtractSegments(context.Background(), "text", "/[/")
	assert.ErrorIs(t, err, extraction.ErrMalformedPattern)

	require.NoError(t, svc.SetPattern(`/\[img:([^\]]+)\]/g`))
	segs, err := svc.ExtractSegments(context.Background(), "[img:1girl] [img:smile]", "")
	require.NoError(t, err)
	assert.Len(t, segs, 2)
}

func TestPromptService_ComposeGenerated(t *testing.T) {
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), "")
	_, err := svc.Initialize(context.Background())
	require.NoError(t, err)

	got, err := svc.ComposeGenerated(context.Background(), "Camera: from above\nPrompt: 1girl, smiling", "")
	require.NoError(t, err)
	assert.Equal(t, extraction.StrategyLabelledLines, got.Strategy)
	assert.Equal(t, "from above, | 1girl, smile", got.Prompt)

	_, err = svc.ComposeGenerated(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrNoPrompt)
}

func TestPromptService_SettingsAffectRendering(t *testing.T) {
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), "")
	_, err := svc.Initialize(context.Background())
	require.NoError(t, err)

	keep := false
	svc.UpdateSettings(context.Background(), MatchingSettingsPatch{KeepUnmatched: &keep})
	res := svc.ProcessPrompt(context.Background(), "1girl, qzxv!!", nil)
	assert.Equal(t, "1girl", res.Prompt)

	override := domain.MatchOptions{KeepUnmatched: true}
	res = svc.ProcessPrompt(context.Background(), "1girl, qzxv!!", &override)
	assert.Equal(t, "1girl, qzxv!!", res.Prompt)

	disabled := false
	svc.UpdateSettings(context.Background(), MatchingSettingsPatch{Enabled: &disabled})
	composed, err := svc.Compose(context.Background(), domain.PromptSegments{Characters: "smiling"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "| smiling", composed.Prompt)
}

func TestPromptService_Synonyms(t *testing.T) {
	svc := newTestService(t, vocabulary.NewStaticSource(testVocabulary), nil, defaultMatcherConfig(), "")
	entries := svc.Synonyms()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Phrase, entries[i].Phrase)
	}
}
