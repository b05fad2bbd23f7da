// Package tipselection decides which tips a random walk may select and keeps track of the current tips.
package tipselection

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/set"
	"github.com/iotaledger/hive.go/generics/walker"
	"github.com/iotaledger/hive.go/logger"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

var (
	// ErrTransactionMissing is returned for tips that are not stored locally.
	ErrTransactionMissing = errors.New("transaction is missing")
	// ErrNotTail is returned for tips that are not the tail of their bundle.
	ErrNotTail = errors.New("transaction is not a tail")
	// ErrNotSolid is returned for tips whose past cone is incomplete.
	ErrNotSolid = errors.New("transaction is not solid")
	// ErrBelowMaxDepth is returned for tips that reference a transaction confirmed too long ago.
	ErrBelowMaxDepth = errors.New("transaction is below max depth")
	// ErrAnalysisLimitExceeded is returned for tips whose unconfirmed past cone is too large to be analyzed. The walk
	// treats it like ErrBelowMaxDepth.
	ErrAnalysisLimitExceeded = errors.New("below max depth analysis limit exceeded")
	// ErrInconsistent is returned for tips that would leave an address with a negative balance.
	ErrInconsistent = errors.New("transaction is not consistent with the ledger")
)

// Ledger folds the unconfirmed past cone of a tip into the diff accumulated by a walk.
type Ledger interface {
	UpdateDiff(approved set.Set[ternary.Hash], diff tangle.StateDiff, tip ternary.Hash) (consistent bool, err error)
}

// MilestoneState provides the index that the max depth is counted from.
type MilestoneState interface {
	LatestSolidMilestoneIndex() uint32
}

// region WalkValidator ////////////////////////////////////////////////////////////////////////////////////////////////

// WalkValidator checks the tips of a single random walk. It accumulates the ledger changes of all accepted tips, so
// a WalkValidator must not be shared between walks.
type WalkValidator struct {
	storage    *tangle.Storage
	ledger     Ledger
	milestones MilestoneState
	log        *logger.Logger

	maxDepthOK set.Set[ternary.Hash]
	diff       tangle.StateDiff
	approved   set.Set[ternary.Hash]

	optsMaxDepth                      uint32
	optsBelowMaxDepthTransactionLimit int
}

// NewWalkValidator creates a WalkValidator for one walk.
func NewWalkValidator(storage *tangle.Storage, ledger Ledger, milestones MilestoneState, opts ...Option) *WalkValidator {
	w := &WalkValidator{
		storage:    storage,
		ledger:     ledger,
		milestones: milestones,
		maxDepthOK: set.New[ternary.Hash](),
		diff:       make(tangle.StateDiff),
		approved:   set.New[ternary.Hash](),

		optsMaxDepth:                      15,
		optsBelowMaxDepthTransactionLimit: 20000,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.NewLogger("TipSelection")
	}

	return w
}

// IsValid returns true if the walk may select the tip. Errors are only returned if the check itself failed.
func (w *WalkValidator) IsValid(hash ternary.Hash) (valid bool, err error) {
	if err = w.Check(hash); err != nil {
		if isRejection(err) {
			w.log.Debugf("validation of %s failed: %s", hash, err)
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Check returns nil if the walk may select the tip or the reason why it may not.
func (w *WalkValidator) Check(hash ternary.Hash) error {
	tx, err := w.storage.Transaction(hash)
	if err != nil {
		return err
	}
	if tx.IsPlaceholder() {
		return ErrTransactionMissing
	}
	if tx.CurrentIndex() != 0 {
		return ErrNotTail
	}

	metadata, err := w.storage.TransactionMetadata(hash)
	if err != nil {
		return err
	}
	if !metadata.IsSolid() {
		return ErrNotSolid
	}

	if err = w.checkMaxDepth(hash, metadata.SnapshotIndex()); err != nil {
		return err
	}

	consistent, err := w.ledger.UpdateDiff(w.approved, w.diff, hash)
	if err != nil {
		return err
	}
	if !consistent {
		return ErrInconsistent
	}

	return nil
}

// checkMaxDepth walks the unconfirmed past cone of the tip and fails if it reaches a transaction that was confirmed
// before the lowest allowed milestone or the genesis.
func (w *WalkValidator) checkMaxDepth(tip ternary.Hash, tipSnapshotIndex uint32) error {
	if w.maxDepthOK.Has(tip) {
		return nil
	}

	floor := w.lowestAllowedSnapshotIndex()
	if tipSnapshotIndex >= floor {
		return nil
	}

	analyzed := 0
	parentWalker := walker.New[ternary.Hash](false).Push(tip)
	for parentWalker.HasNext() {
		if analyzed == w.optsBelowMaxDepthTransactionLimit {
			return ErrAnalysisLimitExceeded
		}

		current := parentWalker.Next()
		analyzed++

		// the genesis counts as confirmed by milestone 0, which is always below a non-zero floor
		if current == ternary.NullHash {
			return ErrBelowMaxDepth
		}

		metadata, err := w.storage.TransactionMetadata(current)
		if err != nil {
			return err
		}
		if snapshotIndex := metadata.SnapshotIndex(); snapshotIndex != 0 {
			if snapshotIndex < floor {
				return ErrBelowMaxDepth
			}
			continue
		}
		if w.maxDepthOK.Has(current) {
			continue
		}

		tx, err := w.storage.Transaction(current)
		if err != nil {
			return err
		}
		parentWalker.Push(tx.Trunk())
		parentWalker.Push(tx.Branch())
	}

	w.maxDepthOK.Add(tip)

	return nil
}

func (w *WalkValidator) lowestAllowedSnapshotIndex() uint32 {
	latestSolid := w.milestones.LatestSolidMilestoneIndex()
	if latestSolid < w.optsMaxDepth {
		return 0
	}

	return latestSolid - w.optsMaxDepth
}

func isRejection(err error) bool {
	for _, rejection := range []error{ErrTransactionMissing, ErrNotTail, ErrNotSolid, ErrBelowMaxDepth, ErrAnalysisLimitExceeded, ErrInconsistent} {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option is a function setting an option of the WalkValidator.
type Option func(*WalkValidator)

// WithMaxDepth sets how many milestones below the latest solid milestone a tip may reference.
func WithMaxDepth(maxDepth uint32) Option {
	return func(w *WalkValidator) {
		w.optsMaxDepth = maxDepth
	}
}

// WithBelowMaxDepthTransactionLimit sets how many transactions the max depth check analyzes before it gives up.
func WithBelowMaxDepthTransactionLimit(limit int) Option {
	return func(w *WalkValidator) {
		w.optsBelowMaxDepthTransactionLimit = limit
	}
}

// WithLogger sets the logger of the WalkValidator.
func WithLogger(log *logger.Logger) Option {
	return func(w *WalkValidator) {
		w.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
