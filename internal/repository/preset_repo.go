package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/picprompt/internal/domain"
	"gorm.io/gorm"
)

var (
	// ErrPresetNotFound is returned when no preset has the requested key.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrDefaultPreset is returned when deleting the default preset.
	ErrDefaultPreset = errors.New("default preset cannot be deleted")
)

const newPresetName = "New Preset"

// PresetRepository handles preset persistence. Exactly one preset is
// current at a time; the default preset always exists.
type PresetRepository struct {
	db *gorm.DB
}

// NewPresetRepository creates a new PresetRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PresetRepository: repository instance bound to db.
func NewPresetRepository(db *gorm.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// EnsureDefault creates the default preset when missing and makes it
// current when no preset is.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if the seed fails.
func (r *PresetRepository) EnsureDefault(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Preset{}).Where("preset_key = ?", domain.DefaultPresetKey).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&domain.Preset{Key: domain.DefaultPresetKey, Name: "Default"}).Error; err != nil {
				return fmt.Errorf("failed to seed default preset: %w", err)
			}
		}

		var current int64
		if err := tx.Model(&domain.Preset{}).Where("is_current = ?", true).Count(&current).Error; err != nil {
			return err
		}
		if current == 0 {
			return markCurrent(tx, domain.DefaultPresetKey)
		}
		return nil
	})
}

// List returns all presets, oldest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Preset: all presets.
//   - error: non-nil if the query fails.
func (r *PresetRepository) List(ctx context.Context) ([]domain.Preset, error) {
	var presets []domain.Preset
	if err := r.db.WithContext(ctx).Order("created_at ASC, preset_key ASC").Find(&presets).Error; err != nil {
		return nil, err
	}
	return presets, nil
}

// Get retrieves a preset by key.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: preset key.
// Returns:
//   - *domain.Preset: preset if found.
//   - error: ErrPresetNotFound when absent.
func (r *PresetRepository) Get(ctx context.Context, key string) (*domain.Preset, error) {
	return getPreset(r.db.WithContext(ctx), key)
}

// Current returns the current preset, falling back to the default preset.
func (r *PresetRepository) Current(ctx context.Context) (*domain.Preset, error) {
	var preset domain.Preset
	err := r.db.WithContext(ctx).Where("is_current = ?", true).First(&preset).Error
	if err == nil {
		return &preset, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Get(ctx, domain.DefaultPresetKey)
}

// Create inserts a new preset and makes it current. An empty key is
// generated as "preset_<unix millis>"; an empty name becomes "New Preset".
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - preset: preset to persist; Key and Name are filled in when empty.
// Returns:
//   - error: non-nil if the insert fails.
func (r *PresetRepository) Create(ctx context.Context, preset *domain.Preset) error {
	if strings.TrimSpace(preset.Name) == "" {
		preset.Name = newPresetName
	}
	if preset.Key == "" {
		preset.Key = fmt.Sprintf("preset_%d", time.Now().UnixMilli())
		if _, err := r.Get(ctx, preset.Key); err == nil {
			preset.Key += "_" + uuid.NewString()[:8]
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		preset.IsCurrent = false
		if err := tx.Create(preset).Error; err != nil {
			return fmt.Errorf("failed to create preset: %w", err)
		}
		if err := markCurrent(tx, preset.Key); err != nil {
			return err
		}
		preset.IsCurrent = true
		return nil
	})
}

// Update applies the non-nil text fields of update to the preset.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: preset key.
//   - update: partial update.
// Returns:
//   - *domain.Preset: updated preset.
//   - error: ErrPresetNotFound when absent.
func (r *PresetRepository) Update(ctx context.Context, key string, update domain.PresetUpdate) (*domain.Preset, error) {
	var out *domain.Preset
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		preset, err := getPreset(tx, key)
		if err != nil {
			return err
		}
		if update.Name != nil {
			preset.Name = *update.Name
		}
		if update.PrefixPrompt != nil {
			preset.PrefixPrompt = *update.PrefixPrompt
		}
		if update.SuffixPrompt != nil {
			preset.SuffixPrompt = *update.SuffixPrompt
		}
		if update.NegativePrompt != nil {
			preset.NegativePrompt = *update.NegativePrompt
		}
		if err := tx.Save(preset).Error; err != nil {
			return fmt.Errorf("failed to update preset: %w", err)
		}
		out = preset
		return nil
	})
	return out, err
}

// UpdateAdvanced merges patch into the preset's advanced settings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: preset key.
//   - patch: partial advanced settings.
// Returns:
//   - *domain.Preset: updated preset.
//   - error: ErrPresetNotFound when absent.
func (r *PresetRepository) UpdateAdvanced(ctx context.Context, key string, patch domain.AdvancedSettingsPatch) (*domain.Preset, error) {
	var out *domain.Preset
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		preset, err := getPreset(tx, key)
		if err != nil {
			return err
		}
		preset.AdvancedSettings = preset.AdvancedSettings.Merge(patch)
		if err := tx.Save(preset).Error; err != nil {
			return fmt.Errorf("failed to update advanced settings: %w", err)
		}
		out = preset
		return nil
	})
	return out, err
}

// Select makes the preset current.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: preset key.
// Returns:
//   - error: ErrPresetNotFound when absent.
func (r *PresetRepository) Select(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getPreset(tx, key); err != nil {
			return err
		}
		return markCurrent(tx, key)
	})
}

// Delete removes a preset. Deleting the current preset makes the default current.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: preset key.
// Returns:
//   - error: ErrDefaultPreset for the default key, ErrPresetNotFound when absent.
func (r *PresetRepository) Delete(ctx context.Context, key string) error {
	if key == domain.DefaultPresetKey {
		return ErrDefaultPreset
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		preset, err := getPreset(tx, key)
		if err != nil {
			return err
		}
		if err := tx.Delete(&domain.Preset{}, "preset_key = ?", key).Error; err != nil {
			return fmt.Errorf("failed to delete preset: %w", err)
		}
		if preset.IsCurrent {
			return markCurrent(tx, domain.DefaultPresetKey)
		}
		return nil
	})
}

func getPreset(db *gorm.DB, key string) (*domain.Preset, error) {
	var preset domain.Preset
	if err := db.First(&preset, "preset_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresetNotFound
		}
		return nil, err
	}
	return &preset, nil
}

func markCurrent(tx *gorm.DB, key string) error {
	if err := tx.Model(&domain.Preset{}).Where("is_current = ?", true).Update("is_current", false).Error; err != nil {
		return fmt.Errorf("failed to clear current preset: %w", err)
	}
	if err := tx.Model(&domain.Preset{}).Where("preset_key = ?", key).Update("is_current", true).Error; err != nil {
		return fmt.Errorf("failed to mark current preset: %w", err)
	}
	return nil
}
