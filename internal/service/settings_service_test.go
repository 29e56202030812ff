package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

func TestSettingsLoadMergesDefaults(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.settings, nil)
	ctx := context.Background()

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	require.NoError(t, svc.UpdateSetting(ctx, "theme", "dark"))
	got, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", got["theme"])
	assert.Equal(t, "ar", got["language"])
}

func TestUpdateSettingMergesButSaveAllOverwrites(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.settings, nil)
	ctx := context.Background()

	require.NoError(t, svc.SaveAll(ctx, domain.Settings{"theme": "dark", "language": "en", "custom": "x"}))
	require.NoError(t, svc.UpdateSetting(ctx, "sounds", true))

	stored, found, err := f.settings.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "dark", stored["theme"])
	assert.Equal(t, "x", stored["custom"])
	assert.Equal(t, true, stored["sounds"])
	assert.Contains(t, stored, "updatedAt")

	require.NoError(t, svc.SaveAll(ctx, domain.Settings{"theme": "light"}))
	stored, _, err = f.settings.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, stored, "custom")
	assert.NotContains(t, stored, "sounds")
	assert.Equal(t, "light", stored["theme"])

	assert.True(t, errorutil.IsKind(svc.UpdateSetting(ctx, " ", 1), errorutil.KindValidationFailure))
	assert.True(t, errorutil.IsKind(svc.SaveAll(ctx, nil), errorutil.KindValidationFailure))
}

func TestSettingsReset(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.settings, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateSetting(ctx, "dataCleanup", 7))
	defaults, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), defaults)

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.Number("dataCleanup", 0))
}
