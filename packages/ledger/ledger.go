// Package ledger keeps the balances confirmed by milestones and checks that value transfers keep them consistent.
package ledger

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/set"
	"github.com/iotaledger/hive.go/generics/walker"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/atomic"

	"github.com/iotaledger/tanglenode/packages/bundle"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

var (
	// ErrInconsistentDiff is returned when applying a diff would make the balance of an address negative.
	ErrInconsistentDiff = errors.New("inconsistent ledger diff")

	// ErrNotReady is returned when the Ledger is used before Init finished.
	ErrNotReady = errors.New("ledger is not initialized")

	// errIncompleteCone is returned internally when the past cone of a transaction contains missing or invalid bundles.
	errIncompleteCone = errors.New("incomplete past cone")
)

// region Ledger ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Ledger holds the balances at the latest milestone that was applied to it.
type Ledger struct {
	storage         *tangle.Storage
	initialBalances tangle.StateDiff
	startIndex      uint32
	log             *logger.Logger

	balances      tangle.StateDiff
	snapshotIndex uint32
	ready         *atomic.Bool
	mutex         sync.RWMutex
}

// New creates a Ledger on top of the given Storage. It has to be initialized with Init before use.
func New(storage *tangle.Storage, opts ...Option) *Ledger {
	ledger := &Ledger{
		storage:         storage,
		initialBalances: make(tangle.StateDiff),
		balances:        make(tangle.StateDiff),
		ready:           atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(ledger)
	}
	if ledger.log == nil {
		ledger.log = logger.NewLogger("Ledger")
	}

	return ledger
}

// Init loads the initial balances and replays the persisted state diffs of all milestones that were applied before.
// It can be called again to rebuild the balances from scratch.
func (l *Ledger) Init(ctx context.Context) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	balances := make(tangle.StateDiff, len(l.initialBalances))
	balances.Add(l.initialBalances)
	snapshotIndex := l.startIndex

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		milestone, err := l.storage.NextMilestone(snapshotIndex)
		if errors.Is(err, tangle.ErrMilestoneNotFound) {
			break
		}
		if err != nil {
			return errors.Errorf("failed to load milestone after %d: %w", snapshotIndex, err)
		}

		diff, err := l.storage.StateDiff(milestone.Index)
		if errors.Is(err, tangle.ErrStateDiffNotFound) {
			break
		}
		if err != nil {
			return err
		}

		balances.Add(diff)
		snapshotIndex = milestone.Index
	}

	if !isConsistent(balances) {
		return errors.Wrapf(ErrInconsistentDiff, "replayed ledger up to milestone %d", snapshotIndex)
	}

	l.balances = balances
	l.snapshotIndex = snapshotIndex
	l.ready.Store(true)

	l.log.Infof("ledger initialized at milestone %d with %d addresses", snapshotIndex, len(balances))

	return nil
}

// IsReady returns true once Init finished.
func (l *Ledger) IsReady() bool {
	return l.ready.Load()
}

// SnapshotIndex returns the index of the latest milestone that was applied.
func (l *Ledger) SnapshotIndex() uint32 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.snapshotIndex
}

// Balance returns the confirmed balance of the address.
func (l *Ledger) Balance(address ternary.Hash) int64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.balances[address]
}

// UpdateSnapshot applies the value transfers that the milestone confirms. It stamps every transaction of the
// unconfirmed past cone of the milestone with its index and persists the resulting state diff. It returns false if the
// cone is incomplete or would leave an address with a negative balance.
func (l *Ledger) UpdateSnapshot(milestone *tangle.Milestone) (applied bool, err error) {
	if !l.IsReady() {
		return false, ErrNotReady
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	metadata, err := l.storage.TransactionMetadata(milestone.Hash)
	if err != nil {
		return false, err
	}
	if metadata.SnapshotIndex() != 0 {
		return true, nil
	}

	diff, err := l.coneDiff(set.New[ternary.Hash](), milestone.Hash)
	if errors.Is(err, errIncompleteCone) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !isConsistent(l.patched(diff)) {
		l.log.Warnf("milestone %d would lead to an inconsistent ledger", milestone.Index)
		return false, nil
	}

	if err = l.stampCone(milestone); err != nil {
		return false, err
	}
	if err = l.storage.StoreStateDiff(milestone.Index, diff); err != nil {
		return false, err
	}

	l.balances.Add(diff)
	l.snapshotIndex = milestone.Index

	return true, nil
}

// UpdateDiff folds the value transfers of the unconfirmed past cone of tip into diff. Transactions in approved were
// folded before and are skipped. It returns false and leaves diff and approved untouched if tip is not solid, its cone
// is incomplete or the combined diff would leave an address with a negative balance.
func (l *Ledger) UpdateDiff(approved set.Set[ternary.Hash], diff tangle.StateDiff, tip ternary.Hash) (consistent bool, err error) {
	if !l.IsReady() {
		return false, ErrNotReady
	}

	metadata, err := l.storage.TransactionMetadata(tip)
	if err != nil {
		return false, err
	}
	if !metadata.IsSolid() {
		return false, nil
	}
	if approved.Has(tip) {
		return true, nil
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	visited := set.New[ternary.Hash]()
	approved.ForEach(func(hash ternary.Hash) {
		visited.Add(hash)
	})

	tipDiff, err := l.coneDiff(visited, tip)
	if errors.Is(err, errIncompleteCone) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	tipDiff.Add(diff)

	if !isConsistent(l.patched(tipDiff)) {
		return false, nil
	}

	for address := range diff {
		delete(diff, address)
	}
	diff.Add(tipDiff)
	visited.ForEach(func(hash ternary.Hash) {
		approved.Add(hash)
	})

	return true, nil
}

// coneDiff sums up the value transfers of all valid bundles whose tail is in the unconfirmed past cone of hash.
// Visited transactions are skipped, the transactions walked are added to visited.
func (l *Ledger) coneDiff(visited set.Set[ternary.Hash], hash ternary.Hash) (diff tangle.StateDiff, err error) {
	diff = make(tangle.StateDiff)

	for coneWalker := walker.New[ternary.Hash](false).Push(hash); coneWalker.HasNext(); {
		current := coneWalker.Next()
		if current == ternary.NullHash || visited.Has(current) {
			continue
		}
		visited.Add(current)

		metadata, err := l.storage.TransactionMetadata(current)
		if err != nil {
			return nil, err
		}
		if snapshotIndex := metadata.SnapshotIndex(); snapshotIndex != 0 && snapshotIndex <= l.snapshotIndex {
			continue
		}

		tx, err := l.storage.Transaction(current)
		if err != nil {
			return nil, err
		}
		if tx.IsPlaceholder() {
			return nil, errors.Wrapf(errIncompleteCone, "transaction %s is missing", current)
		}

		if tx.IsTail() {
			bundles, err := bundle.Validate(l.storage, current)
			if err != nil {
				return nil, err
			}
			if len(bundles) == 0 {
				return nil, errors.Wrapf(errIncompleteCone, "bundle of %s is invalid", current)
			}
			for _, bundleTransaction := range bundles[0] {
				if value := bundleTransaction.Value(); value != 0 {
					diff.Add(tangle.StateDiff{bundleTransaction.Address(): value})
				}
			}
		}

		coneWalker.Push(tx.Trunk())
		coneWalker.Push(tx.Branch())
	}

	return diff, nil
}

// stampCone marks the unconfirmed past cone of the milestone as confirmed by it.
func (l *Ledger) stampCone(milestone *tangle.Milestone) error {
	for coneWalker := walker.New[ternary.Hash](false).Push(milestone.Hash); coneWalker.HasNext(); {
		current := coneWalker.Next()
		if current == ternary.NullHash {
			continue
		}

		metadata, err := l.storage.TransactionMetadata(current)
		if err != nil {
			return err
		}
		if metadata.SnapshotIndex() != 0 {
			continue
		}
		metadata.SetSnapshotIndex(milestone.Index)
		if err = l.storage.StoreTransactionMetadata(metadata); err != nil {
			return err
		}

		tx, err := l.storage.Transaction(current)
		if err != nil {
			return err
		}
		coneWalker.Push(tx.Trunk())
		coneWalker.Push(tx.Branch())
	}

	return nil
}

// patched returns the balances that result from applying diff, restricted to the addresses that diff touches.
func (l *Ledger) patched(diff tangle.StateDiff) tangle.StateDiff {
	patched := make(tangle.StateDiff, len(diff))
	for address, value := range diff {
		patched[address] = l.balances[address] + value
	}

	return patched
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func isConsistent(balances tangle.StateDiff) bool {
	for _, balance := range balances {
		if balance < 0 {
			return false
		}
	}

	return true
}

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option is a function setting an option of the Ledger.
type Option func(*Ledger)

// WithInitialBalances sets the balances of the snapshot the Ledger starts from.
func WithInitialBalances(balances tangle.StateDiff) Option {
	return func(l *Ledger) {
		l.initialBalances = balances
	}
}

// WithStartIndex sets the index of the milestone that the initial balances correspond to.
func WithStartIndex(index uint32) Option {
	return func(l *Ledger) {
		l.startIndex = index
	}
}

// WithLogger sets the logger of the Ledger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
