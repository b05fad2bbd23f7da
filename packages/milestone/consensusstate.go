package milestone

import (
	"sync"

	"github.com/iotaledger/hive.go/stringify"
	"go.uber.org/atomic"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// region ConsensusState ///////////////////////////////////////////////////////////////////////////////////////////////

// ConsensusState holds the latest milestone and the latest solid milestone. Each pointer has exactly one writer, the
// readers see stale but monotonic values.
type ConsensusState struct {
	latestIndex *atomic.Uint32
	solidIndex  *atomic.Uint32

	latestHash ternary.Hash
	solidHash  ternary.Hash
	hashMutex  sync.RWMutex
}

// NewConsensusState creates a ConsensusState with both pointers at the given start index.
func NewConsensusState(startIndex uint32) *ConsensusState {
	return &ConsensusState{
		latestIndex: atomic.NewUint32(startIndex),
		solidIndex:  atomic.NewUint32(startIndex),
	}
}

// LatestMilestoneIndex returns the index of the latest valid milestone.
func (c *ConsensusState) LatestMilestoneIndex() uint32 {
	return c.latestIndex.Load()
}

// LatestSolidMilestoneIndex returns the index of the latest milestone whose past cone is solid and applied to the
// ledger.
func (c *ConsensusState) LatestSolidMilestoneIndex() uint32 {
	return c.solidIndex.Load()
}

// Snapshot returns a consistent copy of both pointers.
func (c *ConsensusState) Snapshot() *ConsensusSnapshot {
	c.hashMutex.RLock()
	defer c.hashMutex.RUnlock()

	return &ConsensusSnapshot{
		LatestMilestoneIndex:      c.latestIndex.Load(),
		LatestMilestoneHash:       c.latestHash,
		LatestSolidMilestoneIndex: c.solidIndex.Load(),
		LatestSolidMilestoneHash:  c.solidHash,
	}
}

// setLatestMilestone moves the latest pointer forward. It returns false if the milestone is not newer.
func (c *ConsensusState) setLatestMilestone(milestone *tangle.Milestone) (updated bool) {
	c.hashMutex.Lock()
	defer c.hashMutex.Unlock()

	if milestone.Index <= c.latestIndex.Load() {
		return false
	}
	c.latestHash = milestone.Hash
	c.latestIndex.Store(milestone.Index)

	return true
}

// setLatestSolidMilestone moves the solid pointer forward. It never passes the latest pointer.
func (c *ConsensusState) setLatestSolidMilestone(milestone *tangle.Milestone) (updated bool) {
	c.hashMutex.Lock()
	defer c.hashMutex.Unlock()

	if milestone.Index <= c.solidIndex.Load() || milestone.Index > c.latestIndex.Load() {
		return false
	}
	c.solidHash = milestone.Hash
	c.solidIndex.Store(milestone.Index)

	return true
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ConsensusSnapshot ////////////////////////////////////////////////////////////////////////////////////////////

// ConsensusSnapshot is a copy of the ConsensusState at one point in time.
type ConsensusSnapshot struct {
	LatestMilestoneIndex      uint32
	LatestMilestoneHash       ternary.Hash
	LatestSolidMilestoneIndex uint32
	LatestSolidMilestoneHash  ternary.Hash
}

// String returns a human readable version of the ConsensusSnapshot.
func (c *ConsensusSnapshot) String() string {
	return stringify.Struct("ConsensusSnapshot",
		stringify.StructField("latestMilestoneIndex", c.LatestMilestoneIndex),
		stringify.StructField("latestMilestoneHash", c.LatestMilestoneHash.String()),
		stringify.StructField("latestSolidMilestoneIndex", c.LatestSolidMilestoneIndex),
		stringify.StructField("latestSolidMilestoneHash", c.LatestSolidMilestoneHash.String()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
