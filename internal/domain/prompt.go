package domain

import "strings"

// PromptSegments is the structured image request extracted from one chat message.
// Characters holds one comma-separated tag block per character, joined by "|".
type PromptSegments struct {
	Camera     string `json:"camera"`
	Scene      string `json:"scene"`
	Characters string `json:"characters"`
}

// String joins the non-empty segments with ", " for display.
func (s PromptSegments) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Camera, s.Scene, s.Characters} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ComposedPrompt is the final prompt pair handed to the image backend.
type ComposedPrompt struct {
	Segments       PromptSegments `json:"segments"`
	Prompt         string         `json:"prompt"`
	NegativePrompt string         `json:"negativePrompt"`
	TagMatched     bool           `json:"tagMatched"`
	Stats          MatchStats     `json:"stats"`
	// Image generation parameters from the preset, present only when enabled
	AdvancedSettings *AdvancedSettings `json:"advancedSettings,omitempty"`
}
