// Package storage selects the backing store for the debt ledger.
package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/config"
	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/boltstore"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/jsonfile"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/sqlstore"
)

// Backend is a ledger.Store that holds resources until closed.
type Backend interface {
	Load(ctx context.Context) ([]models.Debt, error)
	Save(ctx context.Context, debts []models.Debt) error
	Close() error
}

// Open builds the backend named by cfg.StorageKind. StoragePath is the file
// for json, bolt and sqlite; DatabaseDSN is used for postgres.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, error) {
	var (
		b   Backend
		err error
	)

	switch cfg.StorageKind {
	case config.StorageJSON:
		b = jsonfile.New(cfg.StoragePath)
	case config.StorageBolt:
		b, err = boltstore.Open(cfg.StoragePath)
	case config.StorageSQLite:
		b, err = sqlstore.Open(ctx, sqlstore.SQLite, cfg.StoragePath)
	case config.StoragePostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("postgres storage needs a DSN: %w", common.ErrorInvalidArgument)
		}
		b, err = sqlstore.Open(ctx, sqlstore.Postgres, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("%q: %w", cfg.StorageKind, common.ErrorUnsupportedStorage)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageKind, err)
	}

	if cfg.StorageKind == config.StoragePostgres {
		logger.Info(ctx, "storage opened", "kind", cfg.StorageKind)
	} else {
		logger.Info(ctx, "storage opened", "kind", cfg.StorageKind, "path", cfg.StoragePath)
	}
	return b, nil
}
