package tipselection

import (
	"sync"

	"github.com/iotaledger/hive.go/datastructure/randommap"

	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// TipPool keeps the solid transactions that are not approved by another solid transaction yet.
type TipPool struct {
	tips  *randommap.RandomMap
	mutex sync.RWMutex
}

// NewTipPool creates an empty TipPool.
func NewTipPool() *TipPool {
	return &TipPool{
		tips: randommap.New(),
	}
}

// AddTip adds a solid transaction to the pool and removes the transactions it approves.
func (t *TipPool) AddTip(tx *transaction.Transaction) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.tips.Delete(tx.Trunk())
	t.tips.Delete(tx.Branch())
	t.tips.Set(tx.Hash(), tx.Hash())
}

// RandomTips returns up to count distinct tips.
func (t *TipPool) RandomTips(count int) []ternary.Hash {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	entries := t.tips.RandomUniqueEntries(count)
	tips := make([]ternary.Hash, 0, len(entries))
	for _, entry := range entries {
		tips = append(tips, entry.(ternary.Hash))
	}

	return tips
}

// Tips returns all tips.
func (t *TipPool) Tips() []ternary.Hash {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	keys := t.tips.Keys()
	tips := make([]ternary.Hash, 0, len(keys))
	for _, key := range keys {
		tips = append(tips, key.(ternary.Hash))
	}

	return tips
}

// Size returns the number of tips.
func (t *TipPool) Size() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.tips.Size()
}
