package tipselection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestTipPool(t *testing.T) {
	tf := testframework.New(t)
	pool := NewTipPool()

	pool.AddTip(tf.CreateTransaction("A", testframework.GenesisAlias, testframework.GenesisAlias))
	pool.AddTip(tf.CreateTransaction("B", testframework.GenesisAlias, testframework.GenesisAlias))
	assert.Equal(t, 2, pool.Size())

	pool.AddTip(tf.CreateTransaction("C", "A", "B"))
	assert.Equal(t, []ternary.Hash{tf.Hash("C")}, pool.Tips())

	pool.AddTip(tf.CreateTransaction("D", "A", "A"))
	assert.ElementsMatch(t, []ternary.Hash{tf.Hash("C"), tf.Hash("D")}, pool.Tips())
	assert.Len(t, pool.RandomTips(1), 1)
	assert.Len(t, pool.RandomTips(5), 2)
}
