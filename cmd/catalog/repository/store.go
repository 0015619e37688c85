package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/datavault/catalog/cmd/catalog/service"
	"github.com/datavault/catalog/common/db"
)

// Store bundles the Postgres repositories and hands out transaction-bound
// copies for the use-case layer's unit of work.
type Store struct {
	db *db.DB
	q  db.Querier
}

// NewStore creates a store backed by the connection pool
func NewStore(database *db.DB) *Store {
	return &Store{db: database, q: database}
}

// OcflObjectVersions returns the object version repository bound to the
// store's current querier (pool or transaction).
func (s *Store) OcflObjectVersions() service.OcflObjectVersionRepository {
	return NewOcflObjectVersionRepository(s.q)
}

// Tars returns the tar repository bound to the store's current querier
func (s *Store) Tars() service.TarRepository {
	return NewTarRepository(s.q)
}

// InTransaction runs fn against a store bound to a single transaction.
// A store already bound to a transaction runs fn directly, so a use case
// composing other use cases stays in one transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(tx service.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&Store{q: tx})
	})
}
