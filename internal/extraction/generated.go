package extraction

import (
	"regexp"
	"strings"

	"github.com/timmy/picprompt/internal/domain"
)

// Strategy names, in the order ExtractGenerated tries them.
const (
	StrategyStructuredPic = "structured-pic"
	StrategyLegacyPic     = "legacy-pic"
	StrategyLabelledLines = "labelled-lines"
	StrategyRaw           = "raw"
)

var (
	structuredPicRe = regexp.MustCompile(`<pic\s+(?:camera="([^"]*)")?\s*(?:scene="([^"]*)")?\s*prompt="([^"]*)"[^>]*>`)
	legacyPicRe     = regexp.MustCompile(`<pic[^>]*\sprompt="([^"]*)"[^>]*?>`)
	cameraLineRe    = regexp.MustCompile(`(?i)camera:\s*(.+?)(?:\n|$)`)
	sceneLineRe     = regexp.MustCompile(`(?i)scene:\s*(.+?)(?:\n|$)`)
	promptLineRe    = regexp.MustCompile(`(?i)prompt:\s*(.+?)(?:\n|$)`)
	rawPreambleRe   = regexp.MustCompile(`(?i)^(prompt:|here'?s?|the prompt|image prompt|output:?)`)
)

// Strategy turns model output into segments. ok is false when the strategy does not apply.
type Strategy struct {
	Name    string
	Extract func(text string) (seg domain.PromptSegments, ok bool)
}

// GeneratedStrategies returns the strategies used for free-form model output, in priority order.
func GeneratedStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyStructuredPic, Extract: extractStructuredPic},
		{Name: StrategyLegacyPic, Extract: extractLegacyPic},
		{Name: StrategyLabelledLines, Extract: extractLabelledLines},
		{Name: StrategyRaw, Extract: extractRaw},
	}
}

// ExtractGenerated reads one prompt from text produced by a prompt-writing
// model. The first strategy that applies wins.
// Parameters:
//   - text: raw model output.
// Returns:
//   - domain.PromptSegments: extracted segments.
//   - string: name of the strategy that produced them.
//   - bool: false when text is blank or nothing could be read.
func ExtractGenerated(text string) (domain.PromptSegments, string, bool) {
	if strings.TrimSpace(text) == "" {
		return domain.PromptSegments{}, "", false
	}
	for _, s := range GeneratedStrategies() {
		if seg, ok := s.Extract(text); ok {
			return seg, s.Name, true
		}
	}
	return domain.PromptSegments{}, "", false
}

func extractStructuredPic(text string) (domain.PromptSegments, bool) {
	m := structuredPicRe.FindStringSubmatch(text)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return domain.PromptSegments{}, false
	}
	return domain.PromptSegments{
		Camera:     strings.TrimSpace(m[1]),
		Scene:      strings.TrimSpace(m[2]),
		Characters: strings.TrimSpace(m[3]),
	}, true
}

func extractLegacyPic(text string) (domain.PromptSegments, bool) {
	m := legacyPicRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return domain.PromptSegments{}, false
	}
	return domain.PromptSegments{Characters: strings.TrimSpace(m[1])}, true
}

func extractLabelledLines(text string) (domain.PromptSegments, bool) {
	prompt := promptLineRe.FindStringSubmatch(text)
	if prompt == nil {
		return domain.PromptSegments{}, false
	}
	seg := domain.PromptSegments{Characters: strings.TrimSpace(prompt[1])}
	if m := cameraLineRe.FindStringSubmatch(text); m != nil {
		seg.Camera = strings.TrimSpace(m[1])
	}
	if m := sceneLineRe.FindStringSubmatch(text); m != nil {
		seg.Scene = strings.TrimSpace(m[1])
	}
	return seg, true
}

func extractRaw(text string) (domain.PromptSegments, bool) {
	raw := strings.TrimSpace(text)
	raw = strings.TrimSpace(rawPreambleRe.ReplaceAllString(raw, ""))
	if raw == "" {
		return domain.PromptSegments{}, false
	}
	return domain.PromptSegments{Characters: raw}, true
}
