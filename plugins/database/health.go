package database

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/kvstore"

	"github.com/iotaledger/tanglenode/packages/database"
)

var healthKey = []byte("db_health")

// healthMarker persists whether the database was closed properly. The key is set while the node runs and removed on
// a clean shutdown.
type healthMarker struct {
	store kvstore.KVStore
}

func newHealthMarker(store kvstore.KVStore) (*healthMarker, error) {
	healthStore, err := store.WithRealm([]byte{database.PrefixHealth})
	if err != nil {
		return nil, errors.Errorf("failed to create health realm: %w", err)
	}

	return &healthMarker{store: healthStore}, nil
}

// markUnhealthy marks the database as not properly shut down.
func (h *healthMarker) markUnhealthy() {
	if err := h.store.Set(healthKey, []byte{}); err != nil {
		panic(errors.Errorf("failed to set database health state: %w", err))
	}
}

// markHealthy marks the database as correctly closed.
func (h *healthMarker) markHealthy() {
	if err := h.store.Delete(healthKey); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		panic(errors.Errorf("failed to set database health state: %w", err))
	}
}

// isUnhealthy tells whether the database was not shut down properly.
func (h *healthMarker) isUnhealthy() bool {
	contains, err := h.store.Has(healthKey)
	if err != nil {
		panic(errors.Errorf("failed to read database health state: %w", err))
	}

	return contains
}
