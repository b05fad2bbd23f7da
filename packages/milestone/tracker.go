package milestone

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"
	"github.com/paulbellamy/ratecounter"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// SolidityChecker decides whether the past cone of a transaction is complete.
type SolidityChecker interface {
	CheckSolidity(hash ternary.Hash, milestone bool) (solid bool, err error)
}

// Ledger applies the value transfers confirmed by a milestone.
type Ledger interface {
	IsReady() bool
	UpdateSnapshot(milestone *tangle.Milestone) (applied bool, err error)
}

// region Tracker //////////////////////////////////////////////////////////////////////////////////////////////////////

// Tracker advances the latest milestone by scanning the coordinator address and the latest solid milestone by applying
// the milestones to the ledger in index order.
type Tracker struct {
	// Events contains the Tracker related events.
	Events *Events

	storage    *tangle.Storage
	validator  *Validator
	solidifier SolidityChecker
	ledger     Ledger
	state      *ConsensusState
	candidates candidates
	scanRate   *ratecounter.RateCounter
	log        *logger.Logger

	optsRescanInterval     time.Duration
	optsLedgerPollInterval time.Duration
	optsStartIndex         uint32
}

// NewTracker creates a Tracker. Both milestone pointers start at the configured start index.
func NewTracker(storage *tangle.Storage, validator *Validator, solidifier SolidityChecker, ledger Ledger, opts ...TrackerOption) *Tracker {
	tracker := &Tracker{
		Events:     newEvents(),
		storage:    storage,
		validator:  validator,
		solidifier: solidifier,
		ledger:     ledger,
		candidates: make(candidates),
		scanRate:   ratecounter.NewRateCounter(time.Minute),

		optsRescanInterval:     5 * time.Second,
		optsLedgerPollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(tracker)
	}
	if tracker.log == nil {
		tracker.log = logger.NewLogger("MilestoneTracker")
	}
	tracker.state = NewConsensusState(tracker.optsStartIndex)

	return tracker
}

// State returns the milestone pointers maintained by the Tracker.
func (t *Tracker) State() *ConsensusState {
	return t.state
}

// CandidatesAnalyzedPerMinute returns how many milestone candidates were validated during the last minute.
func (t *Tracker) CandidatesAnalyzedPerMinute() int64 {
	return t.scanRate.Rate()
}

// Run starts the scan loop and the solid loop and blocks until the context is canceled and both loops returned.
func (t *Tracker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		t.runLoop(ctx, "latest milestone", t.scanMilestoneCandidates)
	}()

	go func() {
		defer wg.Done()
		if !t.waitForLedger(ctx) {
			return
		}
		t.runLoop(ctx, "solid milestone", t.updateSolidMilestone)
	}()

	wg.Wait()
}

// runLoop calls tick at the rescan interval until the context is canceled. The time spent in tick is subtracted from
// the following sleep.
func (t *Tracker) runLoop(ctx context.Context, name string, tick func(ctx context.Context) error) {
	t.log.Infof("%s tracker started", name)
	defer t.log.Infof("%s tracker stopped", name)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.log.Warnf("error during %s update: %s", name, err)
		}

		sleep := t.optsRescanInterval - time.Since(start)
		if sleep < time.Millisecond {
			sleep = time.Millisecond
		}
		timer.Reset(sleep)
	}
}

// waitForLedger polls the ledger until it is initialized. It returns false if the context was canceled before.
func (t *Tracker) waitForLedger(ctx context.Context) bool {
	t.log.Info("waiting for ledger initialization ...")

	ticker := time.NewTicker(t.optsLedgerPollInterval)
	defer ticker.Stop()

	for !t.ledger.IsReady() {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}

	return true
}

// scanMilestoneCandidates validates the new transactions at the coordinator address and moves the latest milestone
// pointer to the highest persisted milestone.
func (t *Tracker) scanMilestoneCandidates(ctx context.Context) (err error) {
	previousIndex := t.state.LatestMilestoneIndex()
	defer t.announceLatestMilestone(previousIndex)

	hashes, err := t.storage.TransactionHashesByAddress(t.validator.Coordinator())
	if err != nil {
		return err
	}

	for _, hash := range hashes {
		if err = ctx.Err(); err != nil {
			return err
		}
		if !t.candidates.needsAnalysis(hash) {
			continue
		}

		if err = t.analyzeCandidate(hash); err != nil {
			return errors.Errorf("failed to analyze milestone candidate %s: %w", hash, err)
		}
	}

	return nil
}

func (t *Tracker) analyzeCandidate(hash ternary.Hash) error {
	tx, err := t.storage.Transaction(hash)
	if err != nil {
		return err
	}
	if tx.IsPlaceholder() {
		return nil
	}
	if !tx.IsTail() {
		t.candidates.set(hash, CandidateRejected)
		return nil
	}

	t.scanRate.Incr(1)
	validity, err := t.validator.Validate(tx, Index(tx))
	if err != nil {
		t.candidates.set(hash, CandidatePending)
		return err
	}
	t.candidates.setValidity(hash, validity)

	if validity != Valid {
		return nil
	}

	latest, err := t.storage.LatestMilestone()
	if err != nil {
		return err
	}
	t.state.setLatestMilestone(latest)

	return nil
}

func (t *Tracker) announceLatestMilestone(previousIndex uint32) {
	snapshot := t.state.Snapshot()
	if snapshot.LatestMilestoneIndex == previousIndex {
		return
	}

	t.log.Infof("latest milestone has changed from #%d to #%d", previousIndex, snapshot.LatestMilestoneIndex)
	t.Events.LatestMilestoneChanged.Trigger(&MilestoneChangedEvent{
		PreviousIndex: previousIndex,
		Index:         snapshot.LatestMilestoneIndex,
		Hash:          snapshot.LatestMilestoneHash,
	})
}

// updateSolidMilestone applies the milestones following the latest solid milestone in index order, as long as they are
// solid and consistent with the ledger.
func (t *Tracker) updateSolidMilestone(ctx context.Context) error {
	previousIndex := t.state.LatestSolidMilestoneIndex()
	defer t.announceSolidMilestone(previousIndex)

	if previousIndex >= t.state.LatestMilestoneIndex() {
		return nil
	}

	latestIndex := t.state.LatestMilestoneIndex()
	for milestone, err := t.storage.NextMilestone(previousIndex); ; milestone, err = t.storage.NextMilestone(milestone.Index) {
		if errors.Is(err, tangle.ErrMilestoneNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		if milestone.Index > latestIndex {
			return nil
		}

		solid, err := t.solidifier.CheckSolidity(milestone.Hash, true)
		if err != nil {
			return err
		}
		if !solid || milestone.Index < t.state.LatestSolidMilestoneIndex() {
			return nil
		}

		applied, err := t.ledger.UpdateSnapshot(milestone)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}

		t.state.setLatestSolidMilestone(milestone)
	}
}

func (t *Tracker) announceSolidMilestone(previousIndex uint32) {
	snapshot := t.state.Snapshot()
	if snapshot.LatestSolidMilestoneIndex == previousIndex {
		return
	}

	t.log.Infof("latest solid milestone has changed from #%d to #%d", previousIndex, snapshot.LatestSolidMilestoneIndex)
	t.Events.SolidMilestoneChanged.Trigger(&MilestoneChangedEvent{
		PreviousIndex: previousIndex,
		Index:         snapshot.LatestSolidMilestoneIndex,
		Hash:          snapshot.LatestSolidMilestoneHash,
	})
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TrackerOptions ///////////////////////////////////////////////////////////////////////////////////////////////

// TrackerOption is a function setting an option of the Tracker.
type TrackerOption func(*Tracker)

// WithRescanInterval sets the cadence of both tracker loops.
func WithRescanInterval(interval time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.optsRescanInterval = interval
	}
}

// WithLedgerPollInterval sets how often the solid loop checks whether the ledger is initialized.
func WithLedgerPollInterval(interval time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.optsLedgerPollInterval = interval
	}
}

// WithStartIndex sets the milestone index both pointers start from.
func WithStartIndex(index uint32) TrackerOption {
	return func(t *Tracker) {
		t.optsStartIndex = index
	}
}

// WithLogger sets the logger of the Tracker.
func WithLogger(log *logger.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
