package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// SettingsService reads and writes the system settings record.
type SettingsService struct {
	base
	settings repository.SettingsRepository
}

// NewSettingsService constructs the service.
func NewSettingsService(settings repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{base: newBase(nil, logger, nil), settings: settings}
}

// Load returns the defaults overlaid with whatever is stored.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	out := domain.DefaultSettings()
	stored, found, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		for k, v := range stored {
			out[k] = v
		}
	}
	return out, nil
}

// UpdateSetting merges one key, leaving the others untouched.
func (s *SettingsService) UpdateSetting(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errorutil.NewValidationError("setting key is required", nil)
	}
	return s.settings.Merge(ctx, key, value)
}

// SaveAll replaces the whole record with settings and a fresh timestamp.
func (s *SettingsService) SaveAll(ctx context.Context, settings domain.Settings) error {
	if len(settings) == 0 {
		return errorutil.NewValidationError("settings are empty", nil)
	}
	return s.settings.Overwrite(ctx, settings)
}

// Reset overwrites the record with the defaults.
func (s *SettingsService) Reset(ctx context.Context) (domain.Settings, error) {
	defaults := domain.DefaultSettings()
	if err := s.settings.Overwrite(ctx, defaults); err != nil {
		return nil, err
	}
	s.logger.Info("settings reset to defaults")
	return defaults, nil
}
