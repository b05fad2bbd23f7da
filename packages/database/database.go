// Package database contains the key-value databases that back the tangle storage.
package database

import (
	"github.com/iotaledger/hive.go/kvstore"
)

// DB represents a database that hands out the KVStore used by the node.
type DB interface {
	// NewStore returns the KVStore of the database.
	NewStore() kvstore.KVStore
	// Close closes the database. Pending writes are flushed before it returns.
	Close() error
	// RequiresGC returns true if the database needs periodic garbage collection.
	RequiresGC() bool
	// GC runs the garbage collection of the database.
	GC() error
}

// Open returns the persisting database in directory, or an in-memory database if inMemory is set.
func Open(directory string, inMemory bool) (DB, error) {
	if inMemory {
		return NewMemDB(), nil
	}

	return NewBadgerDB(directory)
}
