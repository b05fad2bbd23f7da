package milestone

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestTracker_ScanMilestoneCandidates(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 1, 2)
	tracker := newTestTracker(t, tf, coordinator, newMockLedger())
	latestChanged := captureEvents(tracker.Events.LatestMilestoneChanged)

	coordinator.IssueMilestone("Milestone1", 1, testframework.GenesisAlias, testframework.GenesisAlias)
	coordinator.IssueMilestone("Milestone2", 2, "Milestone1", "Milestone1")
	incomplete := coordinator.CreateMilestone("Milestone3", 3, "Milestone2", "Milestone2")
	_, err := tf.Storage.StoreTransaction(incomplete.Tail())
	require.NoError(t, err)

	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))
	assert.Equal(t, uint32(2), tracker.State().LatestMilestoneIndex())
	assert.Equal(t, tf.Hash("Milestone2"), tracker.State().Snapshot().LatestMilestoneHash)
	assert.Equal(t, []*MilestoneChangedEvent{
		{PreviousIndex: 0, Index: 2, Hash: tf.Hash("Milestone2")},
	}, latestChanged.events())

	assert.Equal(t, CandidateAccepted, tracker.candidates.state(tf.Hash("Milestone1")))
	assert.Equal(t, CandidateRejected, tracker.candidates.state(tf.Bundle("Milestone1")[1].Hash()))
	assert.Equal(t, CandidatePending, tracker.candidates.state(tf.Hash("Milestone3")))
	assert.Equal(t, int64(3), tracker.CandidatesAnalyzedPerMinute())

	// nothing changed, so nothing is announced
	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))
	assert.Len(t, latestChanged.events(), 1)

	tf.Store("Milestone3")
	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))
	assert.Equal(t, uint32(3), tracker.State().LatestMilestoneIndex())
	assert.Equal(t, []*MilestoneChangedEvent{
		{PreviousIndex: 0, Index: 2, Hash: tf.Hash("Milestone2")},
		{PreviousIndex: 2, Index: 3, Hash: tf.Hash("Milestone3")},
	}, latestChanged.events())
	assert.Equal(t, CandidateAccepted, tracker.candidates.state(tf.Hash("Milestone3")))
}

func TestTracker_UpdateSolidMilestone(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 1, 3)
	mockLedger := newMockLedger()
	mockLedger.reject(6)
	tracker := newTestTracker(t, tf, coordinator, mockLedger, WithStartIndex(4))
	solidChanged := captureEvents(tracker.Events.SolidMilestoneChanged)

	coordinator.IssueMilestone("Milestone5", 5, testframework.GenesisAlias, testframework.GenesisAlias)
	coordinator.IssueMilestone("Milestone6", 6, "Milestone5", "Milestone5")
	coordinator.IssueMilestone("Milestone7", 7, "Milestone6", "Milestone6")

	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))
	assert.Equal(t, uint32(7), tracker.State().LatestMilestoneIndex())

	require.NoError(t, tracker.updateSolidMilestone(context.Background()))
	assert.Equal(t, uint32(5), tracker.State().LatestSolidMilestoneIndex())
	assert.Equal(t, tf.Hash("Milestone5"), tracker.State().Snapshot().LatestSolidMilestoneHash)
	assert.Equal(t, []*MilestoneChangedEvent{
		{PreviousIndex: 4, Index: 5, Hash: tf.Hash("Milestone5")},
	}, solidChanged.events())

	// the ledger keeps refusing milestone 6, so milestone 7 is never applied
	require.NoError(t, tracker.updateSolidMilestone(context.Background()))
	assert.Equal(t, uint32(5), tracker.State().LatestSolidMilestoneIndex())
	assert.Len(t, solidChanged.events(), 1)
	assert.Equal(t, []uint32{5, 6, 6}, mockLedger.appliedIndexes())

	mockLedger.accept(6)
	require.NoError(t, tracker.updateSolidMilestone(context.Background()))
	assert.Equal(t, uint32(7), tracker.State().LatestSolidMilestoneIndex())
	assert.Equal(t, []*MilestoneChangedEvent{
		{PreviousIndex: 4, Index: 5, Hash: tf.Hash("Milestone5")},
		{PreviousIndex: 5, Index: 7, Hash: tf.Hash("Milestone7")},
	}, solidChanged.events())
}

func TestTracker_UpdateSolidMilestoneWaitsForSolidity(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 1, 2)
	mockLedger := newMockLedger()
	tracker := newTestTracker(t, tf, coordinator, mockLedger)

	tf.CreateTransaction("Missing", testframework.GenesisAlias, testframework.GenesisAlias)
	coordinator.IssueMilestone("Milestone1", 1, "Missing", "Missing")

	missing := make([]*tangle.TransactionMissingEvent, 0)
	tf.Storage.Events.TransactionMissing.Hook(event.NewClosure(func(missingEvent *tangle.TransactionMissingEvent) {
		missing = append(missing, missingEvent)
	}))

	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))
	require.NoError(t, tracker.updateSolidMilestone(context.Background()))
	assert.Equal(t, uint32(0), tracker.State().LatestSolidMilestoneIndex())
	assert.Empty(t, mockLedger.appliedIndexes())
	require.NotEmpty(t, missing)
	assert.Equal(t, tf.Hash("Missing"), missing[0].Hash)
	assert.True(t, missing[0].Milestone)

	tf.Store("Missing")
	require.NoError(t, tracker.updateSolidMilestone(context.Background()))
	assert.Equal(t, uint32(1), tracker.State().LatestSolidMilestoneIndex())
}

func TestTracker_UpdateSolidMilestoneCanceled(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 1, 1)
	tracker := newTestTracker(t, tf, coordinator, newMockLedger())

	coordinator.IssueMilestone("Milestone1", 1, testframework.GenesisAlias, testframework.GenesisAlias)
	require.NoError(t, tracker.scanMilestoneCandidates(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tracker.updateSolidMilestone(ctx), context.Canceled)
	assert.Equal(t, uint32(0), tracker.State().LatestSolidMilestoneIndex())
}

func TestTracker_Run(t *testing.T) {
	tf := testframework.New(t)
	coordinator := tf.NewCoordinator(sponge.CurlP27, 1, 2)
	account := testframework.NewAccount(t, "ALICE")
	receiver := testframework.Address(t, "BOB")

	testLedger := ledger.New(tf.Storage, ledger.WithInitialBalances(tangle.StateDiff{account.Address: 100}), ledger.WithLogger(logger.NewExampleLogger("Ledger")))
	tracker := newTestTracker(t, tf, coordinator, testLedger, WithRescanInterval(10*time.Millisecond), WithLedgerPollInterval(10*time.Millisecond))

	tf.IssueTransfer("Transfer", account, receiver, 40, testframework.GenesisAlias, testframework.GenesisAlias)
	coordinator.IssueMilestone("Milestone1", 1, "Transfer", "Transfer")
	coordinator.IssueMilestone("Milestone2", 2, "Milestone1", "Milestone1")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(stopped)
	}()

	// the latest milestone moves while the ledger is not initialized, the solid milestone does not
	require.Eventually(t, func() bool {
		return tracker.State().LatestMilestoneIndex() == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint32(0), tracker.State().LatestSolidMilestoneIndex())

	require.NoError(t, testLedger.Init(ctx))
	require.Eventually(t, func() bool {
		return tracker.State().LatestSolidMilestoneIndex() == 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(60), testLedger.Balance(account.Address))
	assert.Equal(t, int64(40), testLedger.Balance(receiver))

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("tracker did not stop after the context was canceled")
	}
}

func TestConsensusState(t *testing.T) {
	state := NewConsensusState(3)
	assert.Equal(t, uint32(3), state.LatestMilestoneIndex())
	assert.Equal(t, uint32(3), state.LatestSolidMilestoneIndex())

	// the solid pointer never passes the latest pointer
	assert.False(t, state.setLatestSolidMilestone(&tangle.Milestone{Index: 4}))
	assert.True(t, state.setLatestMilestone(&tangle.Milestone{Index: 5}))
	assert.False(t, state.setLatestMilestone(&tangle.Milestone{Index: 5}))
	assert.False(t, state.setLatestMilestone(&tangle.Milestone{Index: 4}))
	assert.True(t, state.setLatestSolidMilestone(&tangle.Milestone{Index: 4}))
	assert.False(t, state.setLatestSolidMilestone(&tangle.Milestone{Index: 4}))

	snapshot := state.Snapshot()
	assert.Equal(t, uint32(5), snapshot.LatestMilestoneIndex)
	assert.Equal(t, uint32(4), snapshot.LatestSolidMilestoneIndex)
	assert.Contains(t, snapshot.String(), "latestMilestoneIndex")
}

func newTestTracker(t *testing.T, tf *testframework.TestFramework, coordinator *testframework.Coordinator, trackerLedger Ledger, opts ...TrackerOption) *Tracker {
	opts = append([]TrackerOption{WithLogger(logger.NewExampleLogger("MilestoneTracker"))}, opts...)

	return NewTracker(tf.Storage, newTestValidator(t, tf, coordinator), tangle.NewSolidifier(tf.Storage, 0), trackerLedger, opts...)
}

// region mockLedger ///////////////////////////////////////////////////////////////////////////////////////////////////

type mockLedger struct {
	ready    *atomic.Bool
	rejected map[uint32]bool
	applied  []uint32
	mutex    sync.Mutex
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		ready:    atomic.NewBool(true),
		rejected: make(map[uint32]bool),
	}
}

func (m *mockLedger) IsReady() bool {
	return m.ready.Load()
}

func (m *mockLedger) UpdateSnapshot(milestone *tangle.Milestone) (applied bool, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.applied = append(m.applied, milestone.Index)

	return !m.rejected[milestone.Index], nil
}

func (m *mockLedger) reject(index uint32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.rejected[index] = true
}

func (m *mockLedger) accept(index uint32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.rejected, index)
}

func (m *mockLedger) appliedIndexes() []uint32 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]uint32{}, m.applied...)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region eventCapture /////////////////////////////////////////////////////////////////////////////////////////////////

type eventCapture struct {
	captured []*MilestoneChangedEvent
	mutex    sync.Mutex
}

func captureEvents(milestoneEvent *event.Event[*MilestoneChangedEvent]) *eventCapture {
	capture := &eventCapture{captured: make([]*MilestoneChangedEvent, 0)}
	milestoneEvent.Hook(event.NewClosure(func(changed *MilestoneChangedEvent) {
		capture.mutex.Lock()
		defer capture.mutex.Unlock()

		capture.captured = append(capture.captured, changed)
	}))

	return capture
}

func (e *eventCapture) events() []*MilestoneChangedEvent {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return append([]*MilestoneChangedEvent{}, e.captured...)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
