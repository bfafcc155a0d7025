package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultPresetKey is the key of the preset that always exists and cannot be deleted.
const DefaultPresetKey = "default"

// AdvancedSettings holds per-preset image backend overrides.
// Nil fields fall back to the backend defaults.
type AdvancedSettings struct {
	Enabled     bool     `json:"enabled"`
	Width       *int     `json:"width"`
	Height      *int     `json:"height"`
	Steps       *int     `json:"steps"`
	Scale       *float64 `json:"scale"`
	Seed        *int64   `json:"seed"`
	Sampler     *string  `json:"sampler"`
	CfgRescale  *float64 `json:"cfgRescale"`
	VarietyPlus *bool    `json:"varietyPlus"`
}

// Merge overlays the non-nil fields of patch onto a copy of s.
// Parameters:
//   - patch: partial settings; Enabled is applied when non-nil.
// Returns:
//   - AdvancedSettings: merged settings.
func (s AdvancedSettings) Merge(patch AdvancedSettingsPatch) AdvancedSettings {
	if patch.Enabled != nil {
		s.Enabled = *patch.Enabled
	}
	if patch.Width != nil {
		s.Width = patch.Width
	}
	if patch.Height != nil {
		s.Height = patch.Height
	}
	if patch.Steps != nil {
		s.Steps = patch.Steps
	}
	if patch.Scale != nil {
		s.Scale = patch.Scale
	}
	if patch.Seed != nil {
		s.Seed = patch.Seed
	}
	if patch.Sampler != nil {
		s.Sampler = patch.Sampler
	}
	if patch.CfgRescale != nil {
		s.CfgRescale = patch.CfgRescale
	}
	if patch.VarietyPlus != nil {
		s.VarietyPlus = patch.VarietyPlus
	}
	return s
}

// AdvancedSettingsPatch is a partial update of AdvancedSettings.
type AdvancedSettingsPatch struct {
	Enabled     *bool    `json:"enabled"`
	Width       *int     `json:"width"`
	Height      *int     `json:"height"`
	Steps       *int     `json:"steps"`
	Scale       *float64 `json:"scale"`
	Seed        *int64   `json:"seed"`
	Sampler     *string  `json:"sampler"`
	CfgRescale  *float64 `json:"cfgRescale"`
	VarietyPlus *bool    `json:"varietyPlus"`
}

// Value implements the driver.Valuer interface for database serialization.
func (s AdvancedSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (s *AdvancedSettings) Scan(value interface{}) error {
	if value == nil {
		*s = AdvancedSettings{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan AdvancedSettings")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*s = AdvancedSettings{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Preset is user-configured wrapping text applied around the character tag block.
type Preset struct {
	Key              string           `gorm:"column:preset_key;type:text;primaryKey" json:"key"`
	Name             string           `gorm:"type:text;not null" json:"name"`
	PrefixPrompt     string           `gorm:"type:text" json:"prefixPrompt"`
	SuffixPrompt     string           `gorm:"type:text" json:"suffixPrompt"`
	NegativePrompt   string           `gorm:"type:text" json:"negativePrompt"`
	AdvancedSettings AdvancedSettings `gorm:"type:text" json:"advancedSettings"`
	IsCurrent        bool             `gorm:"index:idx_presets_current" json:"isCurrent"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// TableName returns the database table name for Preset.
func (Preset) TableName() string {
	return "presets"
}

// Prefix returns the trimmed prefix prompt; nil presets yield "".
func (p *Preset) Prefix() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.PrefixPrompt)
}

// Suffix returns the trimmed suffix prompt; nil presets yield "".
func (p *Preset) Suffix() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.SuffixPrompt)
}

// Negative returns the trimmed negative prompt; nil presets yield "".
func (p *Preset) Negative() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.NegativePrompt)
}

// ActiveAdvancedSettings returns the advanced settings only when they are enabled.
func (p *Preset) ActiveAdvancedSettings() *AdvancedSettings {
	if p == nil || !p.AdvancedSettings.Enabled {
		return nil
	}
	s := p.AdvancedSettings
	return &s
}

// PresetUpdate is a partial update of a preset's text fields.
type PresetUpdate struct {
	Name           *string `json:"name"`
	PrefixPrompt   *string `json:"prefixPrompt"`
	SuffixPrompt   *string `json:"suffixPrompt"`
	NegativePrompt *string `json:"negativePrompt"`
}
