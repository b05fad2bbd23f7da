package tipselection

import (
	"context"
	"testing"

	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestWalkValidator_Gates(t *testing.T) {
	tf := testframework.New(t)
	account := testframework.NewAccount(t, "ALICE")
	w := newTestWalkValidator(t, tf, tangle.StateDiff{account.Address: 100}, 0)

	tf.CreateTransaction("Missing", testframework.GenesisAlias, testframework.GenesisAlias)
	assert.ErrorIs(t, w.Check(tf.Hash("Missing")), ErrTransactionMissing)

	transfer := tf.IssueTransfer("Transfer", account, testframework.Address(t, "BOB"), 10, testframework.GenesisAlias, testframework.GenesisAlias)
	solidify(t, tf, "Transfer")
	assert.ErrorIs(t, w.Check(transfer[1].Hash()), ErrNotTail)

	tf.IssueTransaction("Unsolid", testframework.GenesisAlias, testframework.GenesisAlias)
	assert.ErrorIs(t, w.Check(tf.Hash("Unsolid")), ErrNotSolid)

	valid, err := w.IsValid(tf.Hash("Unsolid"))
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = w.IsValid(tf.Hash("Transfer"))
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestWalkValidator_MaxDepth(t *testing.T) {
	tf := testframework.New(t)

	tf.IssueTransaction("Old", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.SetSnapshotIndex("Old", 5)
	tf.IssueTransaction("Recent", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.SetSnapshotIndex("Recent", 8)
	tf.IssueTransaction("Confirmed", "Old", "Old")
	tf.SetSnapshotIndex("Confirmed", 8)

	tf.IssueTransaction("Unconfirmed", "Old", "Old")
	tf.IssueTransaction("Tip1", "Unconfirmed", "Recent")
	tf.IssueTransaction("Tip2", "Recent", "Recent")
	solidify(t, tf, "Tip1", "Tip2", "Confirmed")

	// the floor is 10 - 3 = 7
	w := newTestWalkValidator(t, tf, nil, 10, WithMaxDepth(3))
	assert.ErrorIs(t, w.Check(tf.Hash("Tip1")), ErrBelowMaxDepth)
	assert.ErrorIs(t, w.Check(tf.Hash("Unconfirmed")), ErrBelowMaxDepth)
	assert.NoError(t, w.Check(tf.Hash("Tip2")))

	// a tip confirmed at or above the floor is accepted without looking at its past cone
	w = newTestWalkValidator(t, tf, nil, 10, WithMaxDepth(3), WithBelowMaxDepthTransactionLimit(0))
	assert.NoError(t, w.Check(tf.Hash("Confirmed")))
	assert.ErrorIs(t, w.Check(tf.Hash("Tip2")), ErrAnalysisLimitExceeded)

	// a latest solid milestone below the max depth puts the floor at zero
	w = newTestWalkValidator(t, tf, nil, 2, WithMaxDepth(3), WithBelowMaxDepthTransactionLimit(0))
	assert.NoError(t, w.Check(tf.Hash("Tip1")))
}

func TestWalkValidator_GenesisIsBelowMaxDepth(t *testing.T) {
	tf := testframework.New(t)

	tf.IssueTransaction("A", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransaction("Tip", "A", "A")
	solidify(t, tf, "Tip")

	w := newTestWalkValidator(t, tf, nil, 10, WithMaxDepth(3))
	assert.ErrorIs(t, w.Check(tf.Hash("Tip")), ErrBelowMaxDepth)

	valid, err := w.IsValid(tf.Hash("A"))
	require.NoError(t, err)
	assert.False(t, valid)

	// without a floor the genesis is a valid ancestor
	w = newTestWalkValidator(t, tf, nil, 3, WithMaxDepth(3))
	assert.NoError(t, w.Check(tf.Hash("Tip")))
}

func TestWalkValidator_AnalysisLimit(t *testing.T) {
	tf := testframework.New(t)

	tf.IssueTransaction("Root", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.SetSnapshotIndex("Root", 8)
	tf.IssueTransaction("Tip", "Root", "Root")
	tf.IssueTransaction("Child", "Tip", "Tip")
	solidify(t, tf, "Child")

	w := newTestWalkValidator(t, tf, nil, 10, WithMaxDepth(3), WithBelowMaxDepthTransactionLimit(2))
	assert.ErrorIs(t, w.Check(tf.Hash("Child")), ErrAnalysisLimitExceeded)

	valid, err := w.IsValid(tf.Hash("Child"))
	require.NoError(t, err)
	assert.False(t, valid)

	// tips that passed the check before are not walked again
	w = newTestWalkValidator(t, tf, nil, 10, WithMaxDepth(3), WithBelowMaxDepthTransactionLimit(2))
	assert.NoError(t, w.Check(tf.Hash("Tip")))
	assert.NoError(t, w.Check(tf.Hash("Child")))
}

func TestWalkValidator_Consistency(t *testing.T) {
	tf := testframework.New(t)
	account := testframework.NewAccount(t, "ALICE")
	receiver := testframework.Address(t, "BOB")

	tf.IssueTransfer("Spend1", account, receiver, 70, testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransfer("Spend2", account, receiver, 70, testframework.GenesisAlias, testframework.GenesisAlias)
	solidify(t, tf, "Spend1", "Spend2")

	w := newTestWalkValidator(t, tf, tangle.StateDiff{account.Address: 100}, 0)
	assert.NoError(t, w.Check(tf.Hash("Spend1")))
	assert.NoError(t, w.Check(tf.Hash("Spend1")))
	assert.ErrorIs(t, w.Check(tf.Hash("Spend2")), ErrInconsistent)

	// every walk starts with an empty diff
	w = newTestWalkValidator(t, tf, tangle.StateDiff{account.Address: 100}, 0)
	assert.NoError(t, w.Check(tf.Hash("Spend2")))
}

func TestWalkValidator_LedgerNotReady(t *testing.T) {
	tf := testframework.New(t)
	tf.IssueTransaction("Tip", testframework.GenesisAlias, testframework.GenesisAlias)
	solidify(t, tf, "Tip")

	uninitialized := ledger.New(tf.Storage, ledger.WithLogger(logger.NewExampleLogger("Ledger")))
	w := NewWalkValidator(tf.Storage, uninitialized, latestSolidMilestone(0), WithLogger(logger.NewExampleLogger("TipSelection")))

	valid, err := w.IsValid(tf.Hash("Tip"))
	assert.ErrorIs(t, err, ledger.ErrNotReady)
	assert.False(t, valid)
}

func newTestWalkValidator(t *testing.T, tf *testframework.TestFramework, balances tangle.StateDiff, latestSolid uint32, opts ...Option) *WalkValidator {
	testLedger := ledger.New(tf.Storage, ledger.WithInitialBalances(balances), ledger.WithLogger(logger.NewExampleLogger("Ledger")))
	require.NoError(t, testLedger.Init(context.Background()))

	opts = append([]Option{WithLogger(logger.NewExampleLogger("TipSelection"))}, opts...)

	return NewWalkValidator(tf.Storage, testLedger, latestSolidMilestone(latestSolid), opts...)
}

func solidify(t *testing.T, tf *testframework.TestFramework, aliases ...string) {
	solidifier := tangle.NewSolidifier(tf.Storage, 0)
	for _, alias := range aliases {
		solid, err := solidifier.CheckSolidity(tf.Hash(alias), false)
		require.NoError(t, err)
		require.True(t, solid, "%s is not solid", alias)
	}
}

type latestSolidMilestone uint32

func (l latestSolidMilestone) LatestSolidMilestoneIndex() uint32 {
	return uint32(l)
}
