package app

import (
	"context"

	"github.com/Jaseempk/kuri-web-sub004/internal/domain"
	"github.com/Jaseempk/kuri-web-sub004/internal/ports"
)

type SettingsService struct {
	repo ports.SettingsRepository
}

func NewSettingsService(repo ports.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *SettingsService) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	// Validation légère : toute valeur hors domaine retombe sur le
	// défaut plutôt que d'échouer.
	def := domain.DefaultSettings()
	if settings.TickMillis <= 0 {
		settings.TickMillis = def.TickMillis
	}
	if settings.DebounceMillis < 0 {
		settings.DebounceMillis = def.DebounceMillis
	}
	if settings.DepositWindowMillis <= 0 {
		settings.DepositWindowMillis = def.DepositWindowMillis
	}
	if settings.MaxEventStreams <= 0 {
		settings.MaxEventStreams = def.MaxEventStreams
	}
	return s.repo.Put(ctx, settings)
}
