package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/config"
	"github.com/spec-kit/shiftboard/internal/docstore"
)

// OpenStore connects the backend chosen by STORE_DRIVER and returns the
// document store with a function releasing its connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return docstore.NewPostgres(pg.PoolHandle()), pg.Close, nil
	case config.StoreDriverRedis:
		r := NewRedis(ctx, cfg.Redis, logger)
		return docstore.NewRedis(r.Client, cfg.Redis.KeyPrefix), r.Close, nil
	case config.StoreDriverSQLite:
		db, err := docstore.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return db, func() { _ = db.Close() }, nil
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return docstore.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
