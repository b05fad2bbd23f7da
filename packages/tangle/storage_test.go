package tangle

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/iota.go/trinary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/iotaledger/tanglenode/packages/database"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

func TestStorage_Transactions(t *testing.T) {
	storage := newTestStorage(t)

	var storedEvents int
	storage.Events.TransactionStored.Hook(event.NewClosure(func(*transaction.Transaction) { storedEvents++ }))

	address := testAddress(t, "ADDRESS")
	parent := newTestTransaction(t, ternary.NullHash, ternary.NullHash, address, 1)
	child := newTestTransaction(t, parent.Hash(), ternary.NullHash, address, 2)

	stored, err := storage.StoreTransaction(parent)
	require.NoError(t, err)
	assert.True(t, stored)
	stored, err = storage.StoreTransaction(parent)
	require.NoError(t, err)
	assert.False(t, stored)
	stored, err = storage.StoreTransaction(child)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, 2, storedEvents)

	_, err = storage.StoreTransaction(transaction.NewPlaceholder(testAddress(t, "PLACEHOLDER")))
	assert.Error(t, err)

	loaded, err := storage.Transaction(child.Hash())
	require.NoError(t, err)
	assert.False(t, loaded.IsPlaceholder())
	assert.Equal(t, parent.Hash(), loaded.Trunk())

	missing, err := storage.Transaction(testAddress(t, "MISSING"))
	require.NoError(t, err)
	assert.True(t, missing.IsPlaceholder())

	exists, err := storage.ContainsTransaction(parent.Hash())
	require.NoError(t, err)
	assert.True(t, exists)

	hashes, err := storage.TransactionHashesByAddress(address)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ternary.Hash{parent.Hash(), child.Hash()}, hashes)

	approvers, err := storage.Approvers(parent.Hash())
	require.NoError(t, err)
	assert.Equal(t, []ternary.Hash{child.Hash()}, approvers)
}

func TestStorage_PersistsAcrossInstances(t *testing.T) {
	store := mapdb.NewMapDB()
	storage, err := NewStorage(store, WithTransactionCacheSize(1))
	require.NoError(t, err)

	tx := newTestTransaction(t, ternary.NullHash, ternary.NullHash, testAddress(t, "ADDRESS"), 1)
	_, err = storage.StoreTransaction(tx)
	require.NoError(t, err)

	metadata, err := storage.TransactionMetadata(tx.Hash())
	require.NoError(t, err)
	metadata.SetSnapshotIndex(7)
	require.NoError(t, storage.StoreTransactionMetadata(metadata))
	require.NoError(t, storage.StoreMilestone(&Milestone{Index: 7, Hash: tx.Hash()}))

	reloaded, err := NewStorage(store)
	require.NoError(t, err)

	loaded, err := reloaded.Transaction(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx.Bytes(), loaded.Bytes())

	loadedMetadata, err := reloaded.TransactionMetadata(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, uint32(7), loadedMetadata.SnapshotIndex())
	assert.True(t, loadedMetadata.IsMilestone())

	latest, err := reloaded.LatestMilestone()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), latest.Index)
}

func TestStorage_Milestones(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.LatestMilestone()
	assert.True(t, errors.Is(err, ErrMilestoneNotFound))

	for _, index := range []uint32{5, 9, 6} {
		require.NoError(t, storage.StoreMilestone(&Milestone{Index: index, Hash: testAddress(t, "MILESTONE")}))
	}

	latest, err := storage.LatestMilestone()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), latest.Index)

	exists, err := storage.ContainsMilestone(6)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = storage.ContainsMilestone(7)
	require.NoError(t, err)
	assert.False(t, exists)

	next, err := storage.NextMilestone(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), next.Index)
	next, err = storage.NextMilestone(6)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), next.Index)
	_, err = storage.NextMilestone(9)
	assert.True(t, errors.Is(err, ErrMilestoneNotFound))

	_, err = storage.Milestone(8)
	assert.True(t, errors.Is(err, ErrMilestoneNotFound))
}

func TestStorage_NextMilestoneSkipsGaps(t *testing.T) {
	store := &countingStore{KVStore: mapdb.NewMapDB(), gets: atomic.NewInt64(0)}
	storage, err := NewStorage(store)
	require.NoError(t, err)

	for _, index := range []uint32{1, 1000000} {
		require.NoError(t, storage.StoreMilestone(&Milestone{Index: index, Hash: testAddress(t, "MILESTONE")}))
	}

	// a restarted node rebuilds the milestone index from the database
	storage, err = NewStorage(store)
	require.NoError(t, err)

	store.gets.Store(0)
	next, err := storage.NextMilestone(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000000), next.Index)
	assert.Equal(t, int64(1), store.gets.Load())

	_, err = storage.NextMilestone(math.MaxUint32)
	assert.True(t, errors.Is(err, ErrMilestoneNotFound))
}

func TestStorage_RealmsDoNotOverlap(t *testing.T) {
	store := mapdb.NewMapDB()
	storage, err := NewStorage(store)
	require.NoError(t, err)

	tx := newTestTransaction(t, ternary.NullHash, ternary.NullHash, testAddress(t, "ADDRESS"), 1)
	_, err = storage.StoreTransaction(tx)
	require.NoError(t, err)

	for _, prefix := range []byte{database.PrefixHealth, database.PrefixVersion} {
		otherRealm, err := store.WithRealm([]byte{prefix})
		require.NoError(t, err)

		keys := 0
		require.NoError(t, otherRealm.IterateKeys(kvstore.EmptyPrefix, func(kvstore.Key) bool {
			keys++
			return true
		}))
		assert.Zero(t, keys, "realm %d", prefix)
	}
}

func TestStorage_StateDiffs(t *testing.T) {
	storage := newTestStorage(t)

	first, second := testAddress(t, "FIRST"), testAddress(t, "SECOND")
	diff := StateDiff{first: -10, second: 10}
	require.NoError(t, storage.StoreStateDiff(3, diff))

	loaded, err := storage.StateDiff(3)
	require.NoError(t, err)
	assert.Equal(t, diff, loaded)

	_, err = storage.StateDiff(4)
	assert.True(t, errors.Is(err, ErrStateDiffNotFound))

	loaded.Add(StateDiff{first: 10, second: 5})
	assert.Equal(t, StateDiff{second: 15}, loaded)
}

func TestMilestone_Bytes(t *testing.T) {
	milestone := &Milestone{Index: 1234, Hash: testAddress(t, "HASH")}

	parsed, err := MilestoneFromBytes(milestone.Bytes())
	require.NoError(t, err)
	assert.Equal(t, milestone, parsed)

	_, err = MilestoneFromBytes([]byte{1, 2})
	assert.Error(t, err)
}

func newTestStorage(t *testing.T) *Storage {
	storage, err := NewStorage(mapdb.NewMapDB())
	require.NoError(t, err)

	return storage
}

func newTestTransaction(t *testing.T, trunk, branch, address ternary.Hash, timestamp int64) *transaction.Transaction {
	tx, err := transaction.NewBuilder().
		Address(address).
		Timestamp(timestamp).
		Trunk(trunk).
		Branch(branch).
		Build()
	require.NoError(t, err)

	return tx
}

func testAddress(t *testing.T, prefix string) ternary.Hash {
	trytes := trinary.Trytes(prefix)
	for len(trytes) < ternary.HashTrytesSize {
		trytes += "9"
	}

	hash, err := ternary.HashFromTrytes(trytes)
	require.NoError(t, err)

	return hash
}

// countingStore counts the Get calls of all realms derived from it.
type countingStore struct {
	kvstore.KVStore
	gets *atomic.Int64
}

func (c *countingStore) WithRealm(realm kvstore.Realm) (kvstore.KVStore, error) {
	store, err := c.KVStore.WithRealm(realm)
	if err != nil {
		return nil, err
	}

	return &countingStore{KVStore: store, gets: c.gets}, nil
}

func (c *countingStore) Get(key kvstore.Key) (kvstore.Value, error) {
	c.gets.Inc()

	return c.KVStore.Get(key)
}
