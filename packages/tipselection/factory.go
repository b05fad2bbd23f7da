package tipselection

import (
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// Factory creates a fresh WalkValidator for every walk.
type Factory struct {
	storage    *tangle.Storage
	ledger     Ledger
	milestones MilestoneState
	opts       []Option
}

// NewFactory creates a Factory whose WalkValidators share the given collaborators and options.
func NewFactory(storage *tangle.Storage, ledger Ledger, milestones MilestoneState, opts ...Option) *Factory {
	return &Factory{
		storage:    storage,
		ledger:     ledger,
		milestones: milestones,
		opts:       opts,
	}
}

// WalkValidator returns a WalkValidator for a new walk.
func (f *Factory) WalkValidator() *WalkValidator {
	return NewWalkValidator(f.storage, f.ledger, f.milestones, f.opts...)
}

// CheckTip checks a single tip with a WalkValidator of its own and returns the reason of a rejection.
func (f *Factory) CheckTip(hash ternary.Hash) (valid bool, reason error, err error) {
	if reason = f.WalkValidator().Check(hash); reason == nil {
		return true, nil, nil
	} else if isRejection(reason) {
		return false, reason, nil
	}

	return false, nil, reason
}
