// Package db opens the configured credential store and exposes it through
// a RepositoryManager.
package db

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/krypton/internal/server/config"
	"github.com/dmitrijs2005/krypton/internal/server/users"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Users() users.Repository
	Close(context.Context) error
}

// Open returns the manager selected by cfg.Storage. Migrations are not run.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case StoragePostgres:
		return NewPostgresRepositoryManager(cfg.DatabaseDSN)
	case StorageMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case StorageMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
