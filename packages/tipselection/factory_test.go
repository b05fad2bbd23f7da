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

func TestFactory(t *testing.T) {
	tf := testframework.New(t)
	account := testframework.NewAccount(t, "ALICE")
	receiver := testframework.Address(t, "BOB")

	tf.IssueTransfer("Spend1", account, receiver, 70, testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransfer("Spend2", account, receiver, 70, testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransaction("Unsolid", testframework.GenesisAlias, testframework.GenesisAlias)
	solidify(t, tf, "Spend1", "Spend2")

	testLedger := ledger.New(tf.Storage, ledger.WithInitialBalances(tangle.StateDiff{account.Address: 100}), ledger.WithLogger(logger.NewExampleLogger("Ledger")))
	require.NoError(t, testLedger.Init(context.Background()))

	factory := NewFactory(tf.Storage, testLedger, latestSolidMilestone(0), WithLogger(logger.NewExampleLogger("TipSelection")))

	// every tip is checked against an empty diff
	for _, alias := range []string{"Spend1", "Spend2"} {
		valid, reason, err := factory.CheckTip(tf.Hash(alias))
		require.NoError(t, err)
		assert.NoError(t, reason)
		assert.True(t, valid)
	}

	valid, reason, err := factory.CheckTip(tf.Hash("Unsolid"))
	require.NoError(t, err)
	assert.ErrorIs(t, reason, ErrNotSolid)
	assert.False(t, valid)

	// a walk shares its diff between the tips
	w := factory.WalkValidator()
	assert.NoError(t, w.Check(tf.Hash("Spend1")))
	assert.ErrorIs(t, w.Check(tf.Hash("Spend2")), ErrInconsistent)
}
