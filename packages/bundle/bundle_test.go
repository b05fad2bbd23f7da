package bundle_test

import (
	"testing"

	"github.com/iotaledger/iota.go/trinary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/bundle"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/testframework"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

func TestValidate_SingleTransaction(t *testing.T) {
	tf := testframework.New(t)
	tx := tf.IssueTransaction("A", testframework.GenesisAlias, testframework.GenesisAlias)

	bundles, err := bundle.Validate(tf.Storage, tx.Hash())
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, tx.Hash(), bundles[0].Tail().Hash())
}

func TestValidate_Transfer(t *testing.T) {
	tf := testframework.New(t)
	account := testframework.NewAccount(t, "SEED")

	transfer := tf.IssueTransfer("Transfer", account, testframework.Address(t, "RECEIVER"), 10, testframework.GenesisAlias, testframework.GenesisAlias)
	require.Len(t, transfer, 2)

	bundles, err := bundle.Validate(tf.Storage, transfer.Tail().Hash())
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Len(t, bundles[0], 2)

	// only tails start a bundle
	bundles, err = bundle.Validate(tf.Storage, transfer[1].Hash())
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestValidate_WrongSignature(t *testing.T) {
	tf := testframework.New(t)
	owner := testframework.NewAccount(t, "OWNER")
	thief := testframework.NewAccount(t, "THIEF")

	stolen := tf.CreateTransfer("Stolen", owner, testframework.Address(t, "RECEIVER"), 10, testframework.GenesisAlias, testframework.GenesisAlias)
	signedByThief := tf.CreateTransfer("SignedByThief", thief, testframework.Address(t, "RECEIVER"), 10, testframework.GenesisAlias, testframework.GenesisAlias)

	// the input keeps its essence, only the signature is replaced
	forged, err := transaction.NewBuilder().
		SignatureMessageFragment(signedByThief[0].SignatureMessageFragment()).
		Address(stolen[0].Address()).
		Value(stolen[0].Value()).
		Timestamp(stolen[0].Timestamp()).
		CurrentIndex(0).
		LastIndex(1).
		Bundle(stolen[0].Bundle()).
		Trunk(stolen[1].Hash()).
		Branch(stolen[0].Branch()).
		Build()
	require.NoError(t, err)

	for _, tx := range []*transaction.Transaction{forged, stolen[1]} {
		_, err = tf.Storage.StoreTransaction(tx)
		require.NoError(t, err)
	}

	bundles, err := bundle.Validate(tf.Storage, forged.Hash())
	require.NoError(t, err)
	assert.Empty(t, bundles)

	// the original signature is accepted
	tf.Store("Stolen")
	bundles, err = bundle.Validate(tf.Storage, stolen.Tail().Hash())
	require.NoError(t, err)
	assert.Len(t, bundles, 1)
}

func TestValidate_Incomplete(t *testing.T) {
	tf := testframework.New(t)
	account := testframework.NewAccount(t, "SEED")

	transfer := tf.CreateTransfer("Transfer", account, testframework.Address(t, "RECEIVER"), 10, testframework.GenesisAlias, testframework.GenesisAlias)
	_, err := tf.Storage.StoreTransaction(transfer.Tail())
	require.NoError(t, err)

	bundles, err := bundle.Validate(tf.Storage, transfer.Tail().Hash())
	require.NoError(t, err)
	assert.Empty(t, bundles)

	bundles, err = bundle.Validate(tf.Storage, testframework.Address(t, "UNKNOWN"))
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestValidate_Milestone(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 2, 2)

	milestone := coordinator.IssueMilestone("Milestone", 1, testframework.GenesisAlias, testframework.GenesisAlias)
	require.Len(t, milestone, 3)

	bundles, err := bundle.Validate(tf.Storage, milestone.Tail().Hash())
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Len(t, bundles[0], 3)
}

func TestValidate_AddressWithNonZeroLastTrit(t *testing.T) {
	tf := testframework.New(t)

	addressTrits := testframework.Address(t, "COORDINATOR").Trits()
	addressTrits[ternary.HashTrinarySize-1] = 1
	address := ternary.MustHashFromTrits(addressTrits)

	builder := transaction.NewBuilder().Address(address).Timestamp(1).CurrentIndex(0).LastIndex(0)
	bundleHash, err := bundle.HashEssences(builder.Essence())
	require.NoError(t, err)

	tx, err := builder.Bundle(bundleHash).Build()
	require.NoError(t, err)
	_, err = tf.Storage.StoreTransaction(tx)
	require.NoError(t, err)

	bundles, err := bundle.Validate(tf.Storage, tx.Hash())
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, address, bundles[0].Tail().Address())
}

func TestValidate_InvalidLastIndex(t *testing.T) {
	tf := testframework.New(t)

	for _, lastIndex := range []int64{ternary.MaxValue(transaction.LastIndexSize), bundle.MaxLength, -1} {
		builder := transaction.NewBuilder().
			Address(testframework.Address(t, "TANGLE")).
			Timestamp(lastIndex).
			CurrentIndex(0).
			LastIndex(lastIndex)
		bundleHash, err := bundle.HashEssences(builder.Essence())
		require.NoError(t, err)

		tail, err := builder.Bundle(bundleHash).Build()
		require.NoError(t, err)
		_, err = tf.Storage.StoreTransaction(tail)
		require.NoError(t, err)

		bundles, err := bundle.Validate(tf.Storage, tail.Hash())
		require.NoError(t, err)
		assert.Empty(t, bundles, "lastIndex %d", lastIndex)
	}
}

func TestHashEssences_ClearsLastTrit(t *testing.T) {
	essence := make(trinary.Trits, transaction.EssenceSize)
	essence[0] = 1
	withLastTrit := make(trinary.Trits, transaction.EssenceSize)
	copy(withLastTrit, essence)
	withLastTrit[ternary.HashTrinarySize-1] = 1

	expected, err := bundle.HashEssences(essence)
	require.NoError(t, err)
	actual, err := bundle.HashEssences(withLastTrit)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}
