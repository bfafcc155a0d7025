package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
)

func newTestRepo(t *testing.T) *PresetRepository {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "picprompt.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := NewPresetRepository(db)
	require.NoError(t, repo.EnsureDefault(context.Background()))
	return repo
}

func strPtr(s string) *string { return &s }

func TestPresetRepository_DefaultSeeded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureDefault(ctx), "seeding twice is a no-op")

	presets, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, domain.DefaultPresetKey, presets[0].Key)

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPresetKey, current.Key)
	assert.True(t, current.IsCurrent)
}

func TestPresetRepository_CreateSelectsNewPreset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := &domain.Preset{PrefixPrompt: "masterpiece"}
	require.NoError(t, repo.Create(ctx, p))
	assert.Contains(t, p.Key, "preset_")
	assert.Equal(t, "New Preset", p.Name)

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.Key, current.Key)
	assert.Equal(t, "masterpiece", current.PrefixPrompt)

	def, err := repo.Get(ctx, domain.DefaultPresetKey)
	require.NoError(t, err)
	assert.False(t, def.IsCurrent)
}

func TestPresetRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, domain.DefaultPresetKey, domain.PresetUpdate{
		SuffixPrompt:   strPtr("best quality"),
		NegativePrompt: strPtr("lowres"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Default", updated.Name)
	assert.Equal(t, "best quality", updated.SuffixPrompt)

	got, err := repo.Get(ctx, domain.DefaultPresetKey)
	require.NoError(t, err)
	assert.Equal(t, "lowres", got.NegativePrompt)

	_, err = repo.Update(ctx, "missing", domain.PresetUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestPresetRepository_UpdateAdvanced(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	enabled := true
	width := 832
	_, err := repo.UpdateAdvanced(ctx, domain.DefaultPresetKey, domain.AdvancedSettingsPatch{Enabled: &enabled, Width: &width})
	require.NoError(t, err)

	steps := 28
	_, err = repo.UpdateAdvanced(ctx, domain.DefaultPresetKey, domain.AdvancedSettingsPatch{Steps: &steps})
	require.NoError(t, err)

	got, err := repo.Get(ctx, domain.DefaultPresetKey)
	require.NoError(t, err)
	active := got.ActiveAdvancedSettings()
	require.NotNil(t, active)
	assert.Equal(t, 832, *active.Width)
	assert.Equal(t, 28, *active.Steps)
	assert.Nil(t, active.Height)
}

func TestPresetRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, domain.DefaultPresetKey), ErrDefaultPreset)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrPresetNotFound)

	p := &domain.Preset{Key: "anime", Name: "Anime"}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Delete(ctx, "anime"))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPresetKey, current.Key)
	assert.True(t, current.IsCurrent)

	_, err = repo.Get(ctx, "anime")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestPresetRepository_Select(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Preset{Key: "a", Name: "A"}))
	require.NoError(t, repo.Create(ctx, &domain.Preset{Key: "b", Name: "B"}))
	require.NoError(t, repo.Select(ctx, "a"))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", current.Key)

	presets, err := repo.List(ctx)
	require.NoError(t, err)
	currents := 0
	for _, p := range presets {
		if p.IsCurrent {
			currents++
		}
	}
	assert.Equal(t, 1, currents)

	assert.ErrorIs(t, repo.Select(ctx, "zzz"), ErrPresetNotFound)
}

func TestDialectorFor(t *testing.T) {
	pg, err := dialectorFor(&config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432})
	require.NoError(t, err)
	assert.Equal(t, "postgres", pg.Name())

	path := filepath.Join(t.TempDir(), "nested", "picprompt.db")
	lite, err := dialectorFor(&config.DatabaseConfig{Driver: "mysql", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", lite.Name())
	assert.DirExists(t, filepath.Dir(path))

	assert.False(t, needsDir(":memory:"))
	assert.False(t, needsDir("file:test.db?mode=memory"))
}
