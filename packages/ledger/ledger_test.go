package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/iotaledger/hive.go/generics/set"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestLedger_UpdateSnapshot(t *testing.T) {
	tf := testframework.New(t)
	sender := testframework.NewAccount(t, "SENDER")
	receiver := testframework.Address(t, "RECEIVER")

	ledger := newTestLedger(t, tf, tangle.StateDiff{sender.Address: 100})

	tf.IssueTransfer("Transfer1", sender, receiver, 30, testframework.GenesisAlias, testframework.GenesisAlias)
	milestone1 := issueMilestone(t, tf, "Milestone1", 1, "Transfer1")

	applied, err := ledger.UpdateSnapshot(milestone1)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(70), ledger.Balance(sender.Address))
	assert.Equal(t, int64(30), ledger.Balance(receiver))
	assert.Equal(t, uint32(1), ledger.SnapshotIndex())

	metadata, err := tf.Storage.TransactionMetadata(tf.Hash("Transfer1"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), metadata.SnapshotIndex())

	diff, err := tf.Storage.StateDiff(1)
	require.NoError(t, err)
	assert.Equal(t, tangle.StateDiff{sender.Address: -30, receiver: 30}, diff)

	// applying the same milestone again changes nothing
	applied, err = ledger.UpdateSnapshot(milestone1)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(70), ledger.Balance(sender.Address))

	tf.IssueTransfer("Overspend", sender, receiver, 80, "Milestone1", testframework.GenesisAlias)
	milestone2 := issueMilestone(t, tf, "Milestone2", 2, "Overspend")

	applied, err = ledger.UpdateSnapshot(milestone2)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, uint32(1), ledger.SnapshotIndex())
	assert.Equal(t, int64(70), ledger.Balance(sender.Address))

	metadata, err = tf.Storage.TransactionMetadata(tf.Hash("Overspend"))
	require.NoError(t, err)
	assert.Zero(t, metadata.SnapshotIndex())
}

func TestLedger_UpdateSnapshotIncompleteCone(t *testing.T) {
	tf := testframework.New(t)
	ledger := newTestLedger(t, tf, tangle.StateDiff{})

	tf.CreateTransaction("Missing", testframework.GenesisAlias, testframework.GenesisAlias)
	milestone := issueMilestone(t, tf, "Milestone1", 1, "Missing")

	applied, err := ledger.UpdateSnapshot(milestone)
	require.NoError(t, err)
	assert.False(t, applied)

	tf.Store("Missing")
	applied, err = ledger.UpdateSnapshot(milestone)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestLedger_Init(t *testing.T) {
	tf := testframework.New(t)
	sender := testframework.NewAccount(t, "SENDER")
	receiver := testframework.Address(t, "RECEIVER")
	initialBalances := tangle.StateDiff{sender.Address: 100}

	ledger := newTestLedger(t, tf, initialBalances)
	assert.True(t, ledger.IsReady())

	tf.IssueTransfer("Transfer1", sender, receiver, 30, testframework.GenesisAlias, testframework.GenesisAlias)
	applied, err := ledger.UpdateSnapshot(issueMilestone(t, tf, "Milestone1", 1, "Transfer1"))
	require.NoError(t, err)
	require.True(t, applied)

	// a milestone without a state diff ends the replay
	issueMilestone(t, tf, "Milestone2", 2, "Milestone1")

	restarted := newTestLedger(t, tf, initialBalances)
	assert.Equal(t, uint32(1), restarted.SnapshotIndex())
	assert.Equal(t, int64(70), restarted.Balance(sender.Address))
	assert.Equal(t, int64(30), restarted.Balance(receiver))
}

func TestLedger_NotReady(t *testing.T) {
	tf := testframework.New(t)
	ledger := New(tf.Storage, WithLogger(logger.NewExampleLogger("Ledger")))
	assert.False(t, ledger.IsReady())

	_, err := ledger.UpdateSnapshot(&tangle.Milestone{Index: 1})
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = ledger.UpdateDiff(set.New[ternary.Hash](), make(tangle.StateDiff), ternary.NullHash)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestLedger_UpdateDiff(t *testing.T) {
	tf := testframework.New(t)
	sender := testframework.NewAccount(t, "SENDER")
	receiver := testframework.Address(t, "RECEIVER")

	ledger := newTestLedger(t, tf, tangle.StateDiff{sender.Address: 70})
	solidifier := tangle.NewSolidifier(tf.Storage, 0)

	tf.IssueTransfer("Spend50", sender, receiver, 50, testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransfer("Spend30", sender, receiver, 30, testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransaction("Unsolid", "Spend50", testframework.GenesisAlias)
	for _, alias := range []string{"Spend50", "Spend30"} {
		solid, err := solidifier.CheckSolidity(tf.Hash(alias), false)
		require.NoError(t, err)
		require.True(t, solid)
	}

	approved := set.New[ternary.Hash]()
	diff := make(tangle.StateDiff)

	consistent, err := ledger.UpdateDiff(approved, diff, tf.Hash("Unsolid"))
	require.NoError(t, err)
	assert.False(t, consistent)

	consistent, err = ledger.UpdateDiff(approved, diff, tf.Hash("Spend50"))
	require.NoError(t, err)
	assert.True(t, consistent)
	assert.Equal(t, tangle.StateDiff{sender.Address: -50, receiver: 50}, diff)
	assert.True(t, approved.Has(tf.Hash("Spend50")))

	// folding the same tip again is a no-op
	consistent, err = ledger.UpdateDiff(approved, diff, tf.Hash("Spend50"))
	require.NoError(t, err)
	assert.True(t, consistent)
	assert.Equal(t, tangle.StateDiff{sender.Address: -50, receiver: 50}, diff)

	// together both transfers spend more than the sender owns
	consistent, err = ledger.UpdateDiff(approved, diff, tf.Hash("Spend30"))
	require.NoError(t, err)
	assert.False(t, consistent)
	assert.Equal(t, tangle.StateDiff{sender.Address: -50, receiver: 50}, diff)
	assert.False(t, approved.Has(tf.Hash("Spend30")))

	// on its own the second transfer is fine
	consistent, err = ledger.UpdateDiff(set.New[ternary.Hash](), make(tangle.StateDiff), tf.Hash("Spend30"))
	require.NoError(t, err)
	assert.True(t, consistent)
}

func TestReadSnapshot(t *testing.T) {
	first, second := testframework.Address(t, "FIRST"), testframework.Address(t, "SECOND")

	balances, err := ReadSnapshot(strings.NewReader(first.Trytes() + ";100\n\n" + second.Trytes() + ";0\n"))
	require.NoError(t, err)
	assert.Equal(t, tangle.StateDiff{first: 100}, balances)

	for _, invalid := range []string{
		first.Trytes() + ";-1",
		first.Trytes() + ";abc",
		first.Trytes(),
		"ABC;100",
		first.Trytes() + ";2779530283277762",
	} {
		_, err = ReadSnapshot(strings.NewReader(invalid))
		assert.ErrorIs(t, err, ErrInvalidSnapshot, invalid)
	}
}

func newTestLedger(t *testing.T, tf *testframework.TestFramework, initialBalances tangle.StateDiff) *Ledger {
	ledger := New(tf.Storage, WithInitialBalances(initialBalances), WithLogger(logger.NewExampleLogger("Ledger")))
	require.NoError(t, ledger.Init(context.Background()))

	return ledger
}

func issueMilestone(t *testing.T, tf *testframework.TestFramework, alias string, index uint32, trunk string) *tangle.Milestone {
	tf.IssueTransaction(alias, trunk, testframework.GenesisAlias)

	milestone := &tangle.Milestone{Index: index, Hash: tf.Hash(alias)}
	require.NoError(t, tf.Storage.StoreMilestone(milestone))

	return milestone
}
