package database

import (
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
)

// memDB keeps all data in a map and loses it on Close. It backs tests and nodes started with database.inMemory.
type memDB struct {
	store kvstore.KVStore
}

// NewMemDB returns a new in-memory (not persisted) DB object.
func NewMemDB() DB {
	return &memDB{store: mapdb.NewMapDB()}
}

func (m *memDB) NewStore() kvstore.KVStore {
	return m.store
}

func (m *memDB) Close() error {
	m.store = nil
	return nil
}

func (m *memDB) RequiresGC() bool {
	return false
}

func (m *memDB) GC() error {
	return nil
}
