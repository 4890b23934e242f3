package store

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/product_api/internal/config"
	"github.com/Skotchmaster/product_api/internal/db"
	"github.com/Skotchmaster/product_api/internal/repo"
	mongorepo "github.com/Skotchmaster/product_api/internal/repo/mongo"
	"github.com/Skotchmaster/product_api/internal/service"
)

// Store is the persistence surface the services need, whatever the backend.
type Store interface {
	service.UserRepo
	service.ProductRepo
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*repo.GormRepo)(nil)
	_ Store = (*mongorepo.Repo)(nil)
)

// Open connects to the backend named by cfg.StoreDriver and prepares its schema or indexes.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		r, err := mongorepo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.DriverPostgres:
		gdb, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, &repo.GormRepo{DB: gdb})
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, &repo.GormRepo{DB: gdb})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func migrated(ctx context.Context, r *repo.GormRepo) (Store, error) {
	if err := r.Migrate(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}
