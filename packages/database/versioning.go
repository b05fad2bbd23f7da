package database

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/kvstore"
)

// DBVersion is the version of the database schema. It has to be increased with every breaking change of the stored
// transactions, milestones or state diffs.
const DBVersion = 1

var (
	// ErrDBVersionIncompatible is returned when the database was written with a different schema version.
	ErrDBVersionIncompatible = errors.New("database version is not compatible. please delete your database folder and restart")

	dbVersionKey = []byte("db_version")
)

// CheckDatabaseVersion verifies that store was written with the current schema version. An empty store is stamped
// with the current version.
func CheckDatabaseVersion(store kvstore.KVStore) error {
	versionStore, err := store.WithRealm([]byte{PrefixVersion})
	if err != nil {
		return errors.Errorf("failed to create version realm: %w", err)
	}

	entry, err := versionStore.Get(dbVersionKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		if err = versionStore.Set(dbVersionKey, []byte{DBVersion}); err != nil {
			return errors.Errorf("unable to persist db version number: %w", err)
		}

		return nil
	}
	if err != nil {
		return errors.Errorf("failed to read database version: %w", err)
	}

	if len(entry) != 1 || entry[0] != DBVersion {
		return errors.Errorf("%w: supported version: %d, version of database: %v", ErrDBVersionIncompatible, DBVersion, entry)
	}

	return nil
}
