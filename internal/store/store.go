// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"time"

	"staffing-engine/internal/common/database"
	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/common/logger"
)

// Store is the Postgres system-of-record for the engine, with a Redis
// read-through cache in front of professional profiles. The engine treats
// it as authoritative and never caches beyond a single call's lifetime
// outside of that profile cache.
type Store struct {
	db       *database.PostgresClient
	cache    *database.RedisClient
	cacheTTL time.Duration
	logger   logger.Logger
}

func New(db *database.PostgresClient, cache *database.RedisClient, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// withTx runs fn inside a transaction, rolling back on any error so a
// failed multi-row commit leaves every aggregate at its last committed
// state.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return engineerrors.NewDatabaseConnectionFailedError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return engineerrors.NewQueryExecutionFailedError("commit", err)
	}
	return nil
}
