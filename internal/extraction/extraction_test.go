package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
)

const structuredPattern = `/<pic\s+(?:camera="([^"]*)")?\s*(?:scene="([^"]*)")?\s*prompt="([^"]*)"[^>]*>/g`

func TestPattern_ScenarioD(t *testing.T) {
	p, err := ParsePattern(structuredPattern)
	require.NoError(t, err)
	assert.True(t, p.Structured())
	assert.True(t, p.Global())

	got := p.Extract(`She smiles. <pic camera="from above" scene="1girl, bedroom, night" prompt="long hair, smile"> The end.`)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PromptSegments{
		Camera:     "from above",
		Scene:      "1girl, bedroom, night",
		Characters: "long hair, smile",
	}, got[0])
}

func TestPattern_Legacy(t *testing.T) {
	p, err := ParsePattern(config.DefaultExtractionPattern)
	require.NoError(t, err)
	assert.False(t, p.Structured())

	got := p.Extract(`text <pic prompt=" 1girl, smile "> more <pic alt="x" prompt="2girls"> and <pic prompt="">`)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PromptSegments{Characters: "1girl, smile"}, got[0])
	assert.Equal(t, domain.PromptSegments{Characters: "2girls"}, got[1])
}

func TestPattern_NonGlobalTakesFirst(t *testing.T) {
	p, err := ParsePattern(`/<pic[^>]*\sprompt="([^"]*)"[^>]*?>/`)
	require.NoError(t, err)
	assert.False(t, p.Global())

	got := p.Extract(`<pic prompt="a"> <pic prompt="b">`)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Characters)
}

func TestPattern_StructuredWithMissingOptionalGroups(t *testing.T) {
	p := MustParsePattern(structuredPattern)
	got := p.Extract(`<pic prompt="smile"><pic scene="beach" prompt="1girl, swimsuit">`)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PromptSegments{Characters: "smile"}, got[0])
	assert.Equal(t, domain.PromptSegments{Scene: "beach", Characters: "1girl, swimsuit"}, got[1])
}

func TestPattern_NoMatchIsEmpty(t *testing.T) {
	p := MustParsePattern(config.DefaultExtractionPattern)
	assert.Empty(t, p.Extract("no markup here"))
	assert.Empty(t, p.Extract(""))
}

func TestParsePattern_Flags(t *testing.T) {
	p, err := ParsePattern(`/<PIC prompt="([^"]*)">/gi`)
	require.NoError(t, err)
	got := p.Extract(`<pic prompt="smile">`)
	require.Len(t, got, 1)
	assert.Equal(t, "smile", got[0].Characters)

	bare, err := ParsePattern(`<pic prompt="([^"]*)">`)
	require.NoError(t, err)
	assert.False(t, bare.Global())
	assert.Len(t, bare.Extract(`<pic prompt="a"><pic prompt="b">`), 1)
}

func TestParsePattern_Malformed(t *testing.T) {
	tests := []string{
		"",
		"   ",
		`/<pic prompt="(/g`,
		`/(?<=x)y/`,
		`/abc/q`,
	}
	for _, in := range tests {
		_, err := ParsePattern(in)
		require.Error(t, err, "pattern %q", in)
		assert.ErrorIs(t, err, ErrMalformedPattern)

		var pe *PatternError
		assert.True(t, errors.As(err, &pe))
	}
}

func TestExtractGenerated(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         domain.PromptSegments
		wantStrategy string
		wantOK       bool
	}{
		{
			name:         "structured",
			text:         `Sure! <pic camera="close-up" scene="cafe" prompt="1girl, smile">`,
			want:         domain.PromptSegments{Camera: "close-up", Scene: "cafe", Characters: "1girl, smile"},
			wantStrategy: StrategyStructuredPic,
			wantOK:       true,
		},
		{
			name:         "legacy",
			text:         `<pic id="3" prompt="1boy, standing">`,
			want:         domain.PromptSegments{Characters: "1boy, standing"},
			wantStrategy: StrategyLegacyPic,
			wantOK:       true,
		},
		{
			name:         "labelled lines",
			text:         "Camera: from below\nScene: rooftop, sunset\nPrompt: 1girl, wind\n",
			want:         domain.PromptSegments{Camera: "from below", Scene: "rooftop, sunset", Characters: "1girl, wind"},
			wantStrategy: StrategyLabelledLines,
			wantOK:       true,
		},
		{
			name:         "raw with preamble",
			text:         "  Output: 1girl, rain, umbrella ",
			want:         domain.PromptSegments{Characters: "1girl, rain, umbrella"},
			wantStrategy: StrategyRaw,
			wantOK:       true,
		},
		{
			name:         "raw",
			text:         "1girl, sitting",
			want:         domain.PromptSegments{Characters: "1girl, sitting"},
			wantStrategy: StrategyRaw,
			wantOK:       true,
		},
		{name: "blank", text: " \n ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := ExtractGenerated(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStrategy, strategy)
			assert.Equal(t, tt.want, got)
		})
	}
}
