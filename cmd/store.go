package cmd

import (
	"context"
	"fmt"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/infrastructure"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/core/config"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/core/database"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// openRepository connects the configured settings store and makes sure its
// schema exists. The returned func releases the connection.
func openRepository(ctx context.Context, cfg *config.Config) (domain.ISettingsRepository, func(), error) {
	var (
		repo    domain.ISettingsRepository
		closeFn func()
	)

	switch cfg.Store.Driver {
	case config.StoreValkey:
		vk, err := valkey.NewClient(valkey.ConfigFrom(cfg.Valkey))
		if err != nil {
			return nil, nil, err
		}
		repo = infrastructure.NewSettingsValkeyRepository(vk)
		closeFn = vk.Close
	default:
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo = infrastructure.NewSettingsGormRepository(db)
		closeFn = func() {
			if err := database.Close(db); err != nil {
				logrus.WithError(err).Warn("[APP] Failed to close database")
			}
		}
	}

	if err := repo.InitSchema(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to init %s store: %w", cfg.Store.Driver, err)
	}
	logrus.Debugf("[APP] Using %s settings store", cfg.Store.Driver)
	return repo, closeFn, nil
}
