package tangle

import (
	"github.com/iotaledger/hive.go/generics/event"

	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// region Events ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Events represents events happening in the tangle storage.
type Events struct {
	// TransactionStored is triggered when a new transaction was persisted.
	TransactionStored *event.Event[*transaction.Transaction]

	// TransactionSolid is triggered when a transaction was marked as solid.
	TransactionSolid *event.Event[ternary.Hash]

	// TransactionMissing is triggered when a solidity check hits a transaction that is only known by its hash.
	TransactionMissing *event.Event[*TransactionMissingEvent]
}

func newEvents() *Events {
	return &Events{
		TransactionStored:  event.New[*transaction.Transaction](),
		TransactionSolid:   event.New[ternary.Hash](),
		TransactionMissing: event.New[*TransactionMissingEvent](),
	}
}

// TransactionMissingEvent is the payload of the TransactionMissing event.
type TransactionMissingEvent struct {
	Hash ternary.Hash
	// Milestone is set if the check was done for a milestone, so the transaction should be requested with priority.
	Milestone bool
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
