package tangle

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/kvstore"

	"github.com/iotaledger/tanglenode/packages/database"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

const (
	// PrefixTransaction defines the storage prefix for the packed transaction bytes.
	PrefixTransaction byte = iota

	// PrefixTransactionMetadata defines the storage prefix for the transaction metadata.
	PrefixTransactionMetadata

	// PrefixMilestone defines the storage prefix for milestones keyed by their index.
	PrefixMilestone

	// PrefixAddress defines the storage prefix for the address to transaction index.
	PrefixAddress

	// PrefixApprover defines the storage prefix for the parent to child index.
	PrefixApprover

	// PrefixStateDiff defines the storage prefix for the ledger changes of a milestone.
	PrefixStateDiff
)

var (
	// ErrMilestoneNotFound is returned when a requested milestone does not exist.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrStateDiffNotFound is returned when a requested state diff does not exist.
	ErrStateDiffNotFound = errors.New("state diff not found")
)

// region Storage //////////////////////////////////////////////////////////////////////////////////////////////////////

// Storage persists transactions, their metadata, milestones and the indexes needed to navigate the tangle.
type Storage struct {
	// Events contains the Storage related events.
	Events *Events

	transactionStorage kvstore.KVStore
	metadataStorage    kvstore.KVStore
	milestoneStorage   kvstore.KVStore
	addressStorage     kvstore.KVStore
	approverStorage    kvstore.KVStore
	stateDiffStorage   kvstore.KVStore

	transactionCache *lru.Cache[ternary.Hash, *transaction.Transaction]
	metadataCache    *lru.Cache[ternary.Hash, *transaction.Metadata]

	// milestoneIndexes holds the index of every stored milestone in ascending order.
	milestoneIndexes *redblacktree.Tree
	milestoneMutex   sync.RWMutex
	metadataMutex    sync.Mutex
}

// NewStorage creates the Storage on top of the given KVStore.
func NewStorage(store kvstore.KVStore, opts ...Option) (storage *Storage, err error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	tangleStore, err := store.WithRealm([]byte{database.PrefixTangle})
	if err != nil {
		return nil, errors.Errorf("failed to create tangle realm: %w", err)
	}

	storage = &Storage{
		Events:           newEvents(),
		milestoneIndexes: redblacktree.NewWith(utils.UInt32Comparator),
	}
	for prefix, target := range map[byte]*kvstore.KVStore{
		PrefixTransaction:         &storage.transactionStorage,
		PrefixTransactionMetadata: &storage.metadataStorage,
		PrefixMilestone:           &storage.milestoneStorage,
		PrefixAddress:             &storage.addressStorage,
		PrefixApprover:            &storage.approverStorage,
		PrefixStateDiff:           &storage.stateDiffStorage,
	} {
		if *target, err = tangleStore.WithRealm(byteutils.ConcatBytes(tangleStore.Realm(), []byte{prefix})); err != nil {
			return nil, errors.Errorf("failed to create realm %d: %w", prefix, err)
		}
	}

	if storage.transactionCache, err = lru.New[ternary.Hash, *transaction.Transaction](options.transactionCacheSize); err != nil {
		return nil, errors.Errorf("failed to create transaction cache: %w", err)
	}
	if storage.metadataCache, err = lru.New[ternary.Hash, *transaction.Metadata](options.transactionCacheSize); err != nil {
		return nil, errors.Errorf("failed to create metadata cache: %w", err)
	}

	if err = storage.loadMilestoneIndexes(); err != nil {
		return nil, err
	}

	return storage, nil
}

// StoreTransaction persists the Transaction together with fresh metadata and its index entries. It returns false if
// the Transaction was known already.
func (s *Storage) StoreTransaction(tx *transaction.Transaction) (stored bool, err error) {
	if tx.IsPlaceholder() {
		return false, errors.Errorf("cannot store placeholder %s", tx.Hash())
	}
	if exists, err := s.ContainsTransaction(tx.Hash()); err != nil || exists {
		return false, err
	}

	metadata := transaction.NewMetadata(tx.Hash())
	if err = s.StoreTransactionMetadata(metadata); err != nil {
		return false, err
	}
	if err = s.addressStorage.Set(byteutils.ConcatBytes(tx.Address().Bytes(), tx.Hash().Bytes()), []byte{}); err != nil {
		return false, errors.Errorf("failed to store address index of %s: %w", tx.Hash(), err)
	}
	for _, parent := range []ternary.Hash{tx.Trunk(), tx.Branch()} {
		if err = s.approverStorage.Set(byteutils.ConcatBytes(parent.Bytes(), tx.Hash().Bytes()), []byte{}); err != nil {
			return false, errors.Errorf("failed to store approver index of %s: %w", tx.Hash(), err)
		}
	}
	// the transaction bytes are written last, they mark the transaction as complete
	if err = s.transactionStorage.Set(tx.Hash().Bytes(), tx.Bytes()); err != nil {
		return false, errors.Errorf("failed to store transaction %s: %w", tx.Hash(), err)
	}
	s.transactionCache.Add(tx.Hash(), tx)

	s.Events.TransactionStored.Trigger(tx)

	return true, nil
}

// Transaction loads the Transaction with the given hash. Unknown transactions are returned as a placeholder.
func (s *Storage) Transaction(hash ternary.Hash) (*transaction.Transaction, error) {
	if tx, exists := s.transactionCache.Get(hash); exists {
		return tx, nil
	}

	bytes, err := s.transactionStorage.Get(hash.Bytes())
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return transaction.NewPlaceholder(hash), nil
	}
	if err != nil {
		return nil, errors.Errorf("failed to load transaction %s: %w", hash, err)
	}

	tx, err := transaction.FromBytes(hash, bytes)
	if err != nil {
		return nil, errors.Errorf("failed to parse transaction %s: %w", hash, err)
	}
	s.transactionCache.Add(hash, tx)

	return tx, nil
}

// ContainsTransaction returns true if the content of the Transaction is known.
func (s *Storage) ContainsTransaction(hash ternary.Hash) (bool, error) {
	if s.transactionCache.Contains(hash) {
		return true, nil
	}

	exists, err := s.transactionStorage.Has(hash.Bytes())
	if err != nil {
		return false, errors.Errorf("failed to look up transaction %s: %w", hash, err)
	}

	return exists, nil
}

// TransactionMetadata loads the Metadata of the Transaction with the given hash. Unknown transactions get empty
// Metadata that is not persisted until it is stored explicitly.
func (s *Storage) TransactionMetadata(hash ternary.Hash) (*transaction.Metadata, error) {
	s.metadataMutex.Lock()
	defer s.metadataMutex.Unlock()

	if metadata, exists := s.metadataCache.Get(hash); exists {
		return metadata, nil
	}

	bytes, err := s.metadataStorage.Get(hash.Bytes())
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return transaction.NewMetadata(hash), nil
	}
	if err != nil {
		return nil, errors.Errorf("failed to load metadata of %s: %w", hash, err)
	}

	metadata, err := transaction.MetadataFromBytes(hash, bytes)
	if err != nil {
		return nil, err
	}
	s.metadataCache.Add(hash, metadata)

	return metadata, nil
}

// StoreTransactionMetadata persists the Metadata if it was modified.
func (s *Storage) StoreTransactionMetadata(metadata *transaction.Metadata) error {
	if !metadata.IsModified() {
		return nil
	}

	if err := s.metadataStorage.Set(metadata.Hash().Bytes(), metadata.Bytes()); err != nil {
		return errors.Errorf("failed to store metadata of %s: %w", metadata.Hash(), err)
	}
	metadata.SetModified(false)

	s.metadataMutex.Lock()
	s.metadataCache.Add(metadata.Hash(), metadata)
	s.metadataMutex.Unlock()

	return nil
}

// TransactionHashesByAddress returns the hashes of all transactions that reference the given address.
func (s *Storage) TransactionHashesByAddress(address ternary.Hash) ([]ternary.Hash, error) {
	return s.hashesWithPrefix(s.addressStorage, address)
}

// Approvers returns the hashes of all transactions that reference the given transaction as trunk or branch.
func (s *Storage) Approvers(hash ternary.Hash) ([]ternary.Hash, error) {
	return s.hashesWithPrefix(s.approverStorage, hash)
}

func (s *Storage) hashesWithPrefix(store kvstore.KVStore, prefix ternary.Hash) (hashes []ternary.Hash, err error) {
	hashes = make([]ternary.Hash, 0)
	if err = store.IterateKeys(prefix.Bytes(), func(key kvstore.Key) bool {
		var hash ternary.Hash
		copy(hash[:], key[len(key)-ternary.HashSize:])
		hashes = append(hashes, hash)

		return true
	}); err != nil {
		return nil, errors.Errorf("failed to iterate index of %s: %w", prefix, err)
	}

	return hashes, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Milestones ///////////////////////////////////////////////////////////////////////////////////////////////////

// StoreMilestone persists the Milestone and marks its transaction as a milestone.
func (s *Storage) StoreMilestone(milestone *Milestone) error {
	if err := s.milestoneStorage.Set(indexKey(milestone.Index), milestone.Bytes()); err != nil {
		return errors.Errorf("failed to store milestone %d: %w", milestone.Index, err)
	}

	s.milestoneMutex.Lock()
	s.milestoneIndexes.Put(milestone.Index, nil)
	s.milestoneMutex.Unlock()

	metadata, err := s.TransactionMetadata(milestone.Hash)
	if err != nil {
		return err
	}
	metadata.SetMilestone(true)

	return s.StoreTransactionMetadata(metadata)
}

// Milestone loads the Milestone with the given index.
func (s *Storage) Milestone(index uint32) (*Milestone, error) {
	bytes, err := s.milestoneStorage.Get(indexKey(index))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrMilestoneNotFound, "index %d", index)
	}
	if err != nil {
		return nil, errors.Errorf("failed to load milestone %d: %w", index, err)
	}

	return MilestoneFromBytes(bytes)
}

// ContainsMilestone returns true if a Milestone with the given index exists.
func (s *Storage) ContainsMilestone(index uint32) (bool, error) {
	exists, err := s.milestoneStorage.Has(indexKey(index))
	if err != nil {
		return false, errors.Errorf("failed to look up milestone %d: %w", index, err)
	}

	return exists, nil
}

// LatestMilestone returns the Milestone with the highest index.
func (s *Storage) LatestMilestone() (*Milestone, error) {
	s.milestoneMutex.RLock()
	latest := s.milestoneIndexes.Right()
	s.milestoneMutex.RUnlock()

	if latest == nil {
		return nil, errors.Wrap(ErrMilestoneNotFound, "no milestones stored")
	}

	return s.Milestone(latest.Key.(uint32))
}

// NextMilestone returns the Milestone with the lowest index that is greater than index.
func (s *Storage) NextMilestone(index uint32) (*Milestone, error) {
	if index == math.MaxUint32 {
		return nil, errors.Wrapf(ErrMilestoneNotFound, "no milestone after %d", index)
	}

	s.milestoneMutex.RLock()
	next, exists := s.milestoneIndexes.Ceiling(index + 1)
	s.milestoneMutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(ErrMilestoneNotFound, "no milestone after %d", index)
	}

	return s.Milestone(next.Key.(uint32))
}

func (s *Storage) loadMilestoneIndexes() error {
	s.milestoneMutex.Lock()
	defer s.milestoneMutex.Unlock()

	if err := s.milestoneStorage.IterateKeys([]byte{}, func(key kvstore.Key) bool {
		s.milestoneIndexes.Put(binary.BigEndian.Uint32(key), nil)

		return true
	}); err != nil {
		return errors.Errorf("failed to iterate milestones: %w", err)
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region StateDiffs ///////////////////////////////////////////////////////////////////////////////////////////////////

// StoreStateDiff persists the balance changes applied by the milestone with the given index.
func (s *Storage) StoreStateDiff(index uint32, diff StateDiff) error {
	if err := s.stateDiffStorage.Set(indexKey(index), diff.Bytes()); err != nil {
		return errors.Errorf("failed to store state diff of milestone %d: %w", index, err)
	}

	return nil
}

// StateDiff loads the balance changes applied by the milestone with the given index.
func (s *Storage) StateDiff(index uint32) (StateDiff, error) {
	bytes, err := s.stateDiffStorage.Get(indexKey(index))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrStateDiffNotFound, "milestone %d", index)
	}
	if err != nil {
		return nil, errors.Errorf("failed to load state diff of milestone %d: %w", index, err)
	}

	return StateDiffFromBytes(bytes)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func indexKey(index uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, index)

	return key
}

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option is a function setting an option of the Storage.
type Option func(*options)

type options struct {
	transactionCacheSize int
}

func defaultOptions() *options {
	return &options{
		transactionCacheSize: 50000,
	}
}

// WithTransactionCacheSize sets the number of decoded transactions kept in memory.
func WithTransactionCacheSize(size int) Option {
	return func(o *options) {
		o.transactionCacheSize = size
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
