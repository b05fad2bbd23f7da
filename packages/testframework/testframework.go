// Package testframework builds small tangles with signed transfers and coordinator milestones for tests.
package testframework

import (
	"strings"
	"testing"

	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/iota.go/trinary"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/bundle"
	"github.com/iotaledger/tanglenode/packages/iss"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// GenesisAlias refers to the null hash that roots the tangle.
const GenesisAlias = "Genesis"

const milestoneIndexTrits = 15

// region TestFramework ////////////////////////////////////////////////////////////////////////////////////////////////

// TestFramework creates transactions and bundles, keeps track of them by alias and stores them in an in-memory Storage.
type TestFramework struct {
	Storage *tangle.Storage

	test      *testing.T
	bundles   map[string]bundle.Bundle
	timestamp int64
}

// New creates a TestFramework backed by an in-memory database.
func New(t *testing.T, opts ...tangle.Option) *TestFramework {
	storage, err := tangle.NewStorage(mapdb.NewMapDB(), opts...)
	require.NoError(t, err)

	return &TestFramework{
		Storage: storage,
		test:    t,
		bundles: make(map[string]bundle.Bundle),
	}
}

// CreateTransaction creates a zero valued bundle of one transaction that approves trunk and branch without storing it.
func (tf *TestFramework) CreateTransaction(alias, trunk, branch string) *transaction.Transaction {
	return tf.assemble(alias, []*entry{{address: Address(tf.test, "TANGLE")}}, trunk, branch, nil).Tail()
}

// IssueTransaction creates and stores a zero valued bundle of one transaction.
func (tf *TestFramework) IssueTransaction(alias, trunk, branch string) *transaction.Transaction {
	tx := tf.CreateTransaction(alias, trunk, branch)
	tf.Store(alias)

	return tx
}

// CreateTransfer creates a bundle that moves value tokens from the input account to output without storing it.
func (tf *TestFramework) CreateTransfer(alias string, input *Account, output ternary.Hash, value int64, trunk, branch string) bundle.Bundle {
	entries := []*entry{
		{address: input.Address, value: -value},
		{address: output, value: value},
	}

	return tf.assemble(alias, entries, trunk, branch, func(bundleHash, _ ternary.Hash) {
		entries[0].fragment = input.sign(tf.test, bundleHash)
	})
}

// IssueTransfer creates and stores a value transfer.
func (tf *TestFramework) IssueTransfer(alias string, input *Account, output ternary.Hash, value int64, trunk, branch string) bundle.Bundle {
	transfer := tf.CreateTransfer(alias, input, output, value, trunk, branch)
	tf.Store(alias)

	return transfer
}

// Store persists all transactions of the bundles with the given aliases.
func (tf *TestFramework) Store(aliases ...string) {
	for _, alias := range aliases {
		for _, tx := range tf.Bundle(alias) {
			_, err := tf.Storage.StoreTransaction(tx)
			require.NoError(tf.test, err)
		}
	}
}

// Bundle returns the bundle created under alias.
func (tf *TestFramework) Bundle(alias string) bundle.Bundle {
	b, exists := tf.bundles[alias]
	require.True(tf.test, exists, "unknown alias %s", alias)

	return b
}

// Transaction returns the tail of the bundle created under alias.
func (tf *TestFramework) Transaction(alias string) *transaction.Transaction {
	return tf.Bundle(alias).Tail()
}

// Hash returns the tail hash of the bundle created under alias.
func (tf *TestFramework) Hash(alias string) ternary.Hash {
	if alias == GenesisAlias || alias == "" {
		return ternary.NullHash
	}

	return tf.Transaction(alias).Hash()
}

// SetSnapshotIndex marks the tail of the bundle created under alias as confirmed by the milestone with the given index.
func (tf *TestFramework) SetSnapshotIndex(alias string, index uint32) {
	metadata, err := tf.Storage.TransactionMetadata(tf.Hash(alias))
	require.NoError(tf.test, err)
	metadata.SetSnapshotIndex(index)
	require.NoError(tf.test, tf.Storage.StoreTransactionMetadata(metadata))
}

// entry describes one transaction of a bundle that is about to be assembled.
type entry struct {
	address     ternary.Hash
	value       int64
	obsoleteTag trinary.Trits
	fragment    trinary.Trits
}

// assemble computes the bundle hash over the entries, builds the last transaction of the bundle, lets sign fill in the
// signature fragments and chains the remaining transactions to it through their trunks.
func (tf *TestFramework) assemble(alias string, entries []*entry, trunk, branch string, sign func(bundleHash, headHash ternary.Hash)) bundle.Bundle {
	_, exists := tf.bundles[alias]
	require.False(tf.test, exists, "alias %s is used already", alias)

	tf.timestamp++
	lastIndex := int64(len(entries) - 1)

	builders := make([]*transaction.Builder, len(entries))
	essences := make([]trinary.Trits, len(entries))
	for i, e := range entries {
		builders[i] = transaction.NewBuilder().
			Address(e.address).
			Value(e.value).
			ObsoleteTag(e.obsoleteTag).
			Timestamp(tf.timestamp).
			CurrentIndex(int64(i)).
			LastIndex(lastIndex)
		essences[i] = builders[i].Essence()
	}

	bundleHash, err := bundle.HashEssences(essences...)
	require.NoError(tf.test, err)

	trunkHash, branchHash := tf.Hash(trunk), tf.Hash(branch)
	assembled := make(bundle.Bundle, len(entries))

	assembled[lastIndex] = tf.build(builders[lastIndex].Bundle(bundleHash).
		SignatureMessageFragment(entries[lastIndex].fragment).
		Trunk(trunkHash).
		Branch(branchHash))

	if sign != nil {
		sign(bundleHash, assembled[lastIndex].Hash())
	}

	for i := lastIndex - 1; i >= 0; i-- {
		assembled[i] = tf.build(builders[i].Bundle(bundleHash).
			SignatureMessageFragment(entries[i].fragment).
			Trunk(assembled[i+1].Hash()).
			Branch(trunkHash))
	}
	tf.bundles[alias] = assembled

	return assembled
}

func (tf *TestFramework) build(builder *transaction.Builder) *transaction.Transaction {
	tx, err := builder.Build()
	require.NoError(tf.test, err)

	return tx
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Coordinator //////////////////////////////////////////////////////////////////////////////////////////////////

// Coordinator issues milestones signed with the leaves of a Merkle tree. The leaf index equals the milestone index.
type Coordinator struct {
	tf            *TestFramework
	mode          sponge.Mode
	securityLevel int
	tree          *iss.MerkleTree
}

// NewCoordinator creates a Coordinator whose Merkle tree covers the milestone indexes below 2^depth.
func (tf *TestFramework) NewCoordinator(mode sponge.Mode, securityLevel, depth int) *Coordinator {
	tree, err := iss.NewMerkleTree(mode, seedTrits(tf.test, "COORDINATOR"), securityLevel, depth)
	require.NoError(tf.test, err)

	return &Coordinator{
		tf:            tf,
		mode:          mode,
		securityLevel: securityLevel,
		tree:          tree,
	}
}

// Address returns the Merkle root that nodes pin as the coordinator address.
func (c *Coordinator) Address() ternary.Hash {
	return ternary.MustHashFromTrits(c.tree.Root())
}

// Depth returns the depth of the Merkle tree of the Coordinator.
func (c *Coordinator) Depth() int {
	return c.tree.Depth()
}

// SecurityLevel returns the number of signature fragments of a milestone.
func (c *Coordinator) SecurityLevel() int {
	return c.securityLevel
}

// Mode returns the sponge used for the signatures of the Coordinator.
func (c *Coordinator) Mode() sponge.Mode {
	return c.mode
}

// CreateMilestone creates the milestone bundle with the given index without storing it.
func (c *Coordinator) CreateMilestone(alias string, index uint32, trunk, branch string) bundle.Bundle {
	obsoleteTag := ternary.MustInt64ToTrits(int64(index), milestoneIndexTrits)

	siblings, err := c.tree.Siblings(int(index))
	require.NoError(c.tf.test, err)

	entries := make([]*entry, c.securityLevel+1)
	for i := range entries {
		entries[i] = &entry{address: c.Address(), obsoleteTag: obsoleteTag}
	}
	entries[c.securityLevel].fragment = siblings

	return c.tf.assemble(alias, entries, trunk, branch, func(_, headHash ternary.Hash) {
		fragments, err := c.tree.Sign(int(index), headHash.Trits())
		require.NoError(c.tf.test, err)

		for i, fragment := range fragments {
			entries[i].fragment = fragment
		}
	})
}

// IssueMilestone creates and stores the milestone bundle with the given index.
func (c *Coordinator) IssueMilestone(alias string, index uint32, trunk, branch string) bundle.Bundle {
	milestone := c.CreateMilestone(alias, index, trunk, branch)
	c.tf.Store(alias)

	return milestone
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Account //////////////////////////////////////////////////////////////////////////////////////////////////////

// Account is a security level 1 address together with the key that spends from it.
type Account struct {
	Address ternary.Hash
	key     trinary.Trits
}

// NewAccount derives the first address of the given seed.
func NewAccount(t *testing.T, seed string) *Account {
	subseed, err := iss.Subseed(sponge.Kerl, seedTrits(t, seed), 0)
	require.NoError(t, err)
	key, err := iss.Key(sponge.Kerl, subseed, 1)
	require.NoError(t, err)
	digests, err := iss.Digests(sponge.Kerl, key)
	require.NoError(t, err)
	address, err := iss.Address(sponge.Kerl, digests)
	require.NoError(t, err)

	return &Account{
		Address: ternary.MustHashFromTrits(address),
		key:     key,
	}
}

func (a *Account) sign(t *testing.T, bundleHash ternary.Hash) trinary.Trits {
	normalized, err := iss.NormalizedBundle(bundleHash.Trits())
	require.NoError(t, err)
	fragment, err := iss.SignatureFragment(sponge.Kerl, normalized[:iss.NormalizedFragmentLength], a.key)
	require.NoError(t, err)

	return fragment
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// Address returns a hash that can receive value. The name has to consist of trytes, it is padded with 9s.
func Address(t *testing.T, name string) ternary.Hash {
	hash, err := ternary.HashFromTrits(seedTrits(t, name))
	require.NoError(t, err)

	return hash
}

func seedTrits(t *testing.T, name string) trinary.Trits {
	require.LessOrEqual(t, len(name), ternary.HashTrytesSize)

	trits, err := trinary.TrytesToTrits(trinary.Trytes(name + strings.Repeat("9", ternary.HashTrytesSize-len(name))))
	require.NoError(t, err)

	return trits
}
