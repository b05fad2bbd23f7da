package database

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	"github.com/iotaledger/hive.go/kvstore"
	badgerstore "github.com/iotaledger/hive.go/kvstore/badger"
)

const valueLogGCDiscardRatio = 0.1

type badgerDB struct {
	*badger.DB
}

// NewBadgerDB opens (or creates) the persisting database in dirname.
func NewBadgerDB(dirname string) (DB, error) {
	if err := os.MkdirAll(dirname, 0o700); err != nil {
		return nil, errors.Errorf("could not create DB directory: %w", err)
	}

	opts := badger.DefaultOptions(dirname)
	opts.Logger = nil
	opts.SyncWrites = false
	opts.TableLoadingMode = options.MemoryMap
	opts.ValueLogLoadingMode = options.MemoryMap
	opts.CompactL0OnClose = false
	opts.KeepL0InMemory = false
	opts.VerifyValueChecksum = false
	opts.ZSTDCompressionLevel = 1
	// transactions are ternary encoded and compress poorly
	opts.Compression = options.None

	if runtime.GOOS == "windows" {
		opts = opts.WithTruncate(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Errorf("could not open DB: %w", err)
	}

	return &badgerDB{DB: db}, nil
}

func (db *badgerDB) NewStore() kvstore.KVStore {
	return badgerstore.New(db.DB)
}

// Close closes the database and flushes all pending updates to disk.
func (db *badgerDB) Close() error {
	return db.DB.Close()
}

func (db *badgerDB) RequiresGC() bool {
	return true
}

func (db *badgerDB) GC() error {
	if err := db.RunValueLogGC(valueLogGCDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	// release the memory of the rewritten value log
	runtime.GC()

	return nil
}
