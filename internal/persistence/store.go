package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/docstore"
)

// OpenBackend connects the document engine named by cfg.Store.Backend. The
// returned func releases its connections.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Backend, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, MigrationSource(cfg.Postgres.MigrationsDir), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return docstore.NewPostgresBackend(pg.Pool, logger), pg.Close, nil
	case config.BackendMongo:
		mg, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, err
		}
		closeMongo := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mg.Close(shutdownCtx)
		}
		return docstore.NewMongoBackend(mg.Database, logger), closeMongo, nil
	default:
		logger.Warn("using the in-memory document store; data is lost on restart")
		return docstore.NewMemoryBackend(), func() {}, nil
	}
}
