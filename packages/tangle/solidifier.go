package tangle

import (
	"github.com/iotaledger/hive.go/generics/walker"

	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// region Solidifier ///////////////////////////////////////////////////////////////////////////////////////////////////

// Solidifier checks whether the past cone of a transaction is completely known.
type Solidifier struct {
	storage                 *Storage
	maxAnalyzedTransactions int
}

// NewSolidifier creates a Solidifier that gives up after analyzing maxAnalyzedTransactions transactions of a single
// past cone. A non-positive limit disables the cap.
func NewSolidifier(storage *Storage, maxAnalyzedTransactions int) *Solidifier {
	return &Solidifier{
		storage:                 storage,
		maxAnalyzedTransactions: maxAnalyzedTransactions,
	}
}

// CheckSolidity walks the past cone of the given transaction and returns true if no transaction in it is missing.
// The walk does not descend into transactions that are solid already. If the check succeeds, all analyzed
// transactions are marked as solid. Missing transactions are announced through the TransactionMissing event, flagged
// as milestone related if milestone is set.
func (s *Solidifier) CheckSolidity(hash ternary.Hash, milestone bool) (solid bool, err error) {
	metadata, err := s.storage.TransactionMetadata(hash)
	if err != nil {
		return false, err
	}
	if metadata.IsSolid() {
		return true, nil
	}

	analyzed := make([]*transaction.Metadata, 0)
	solid = true

	parentWalker := walker.New[ternary.Hash](false).Push(hash)
	for parentWalker.HasNext() {
		current := parentWalker.Next()
		if current == ternary.NullHash {
			continue
		}

		if s.maxAnalyzedTransactions > 0 && len(analyzed) >= s.maxAnalyzedTransactions {
			return false, nil
		}

		currentMetadata, err := s.storage.TransactionMetadata(current)
		if err != nil {
			return false, err
		}
		if currentMetadata.IsSolid() {
			continue
		}

		tx, err := s.storage.Transaction(current)
		if err != nil {
			return false, err
		}
		if tx.IsPlaceholder() {
			solid = false
			s.storage.Events.TransactionMissing.Trigger(&TransactionMissingEvent{Hash: current, Milestone: milestone})
			continue
		}

		analyzed = append(analyzed, currentMetadata)
		parentWalker.Push(tx.Trunk())
		parentWalker.Push(tx.Branch())
	}

	if !solid {
		return false, nil
	}

	for _, analyzedMetadata := range analyzed {
		if !analyzedMetadata.SetSolid(true) {
			continue
		}
		if err = s.storage.StoreTransactionMetadata(analyzedMetadata); err != nil {
			return false, err
		}
		s.storage.Events.TransactionSolid.Trigger(analyzedMetadata.Hash())
	}

	return true, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
