package milestone

import (
	"github.com/iotaledger/hive.go/generics/event"

	"github.com/iotaledger/tanglenode/packages/ternary"
)

// region Events ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Events represents events happening in the Tracker.
type Events struct {
	// LatestMilestoneChanged is triggered once per scan that moved the latest milestone forward.
	LatestMilestoneChanged *event.Event[*MilestoneChangedEvent]

	// SolidMilestoneChanged is triggered once per run of the solid loop that moved the latest solid milestone forward.
	SolidMilestoneChanged *event.Event[*MilestoneChangedEvent]
}

func newEvents() *Events {
	return &Events{
		LatestMilestoneChanged: event.New[*MilestoneChangedEvent](),
		SolidMilestoneChanged:  event.New[*MilestoneChangedEvent](),
	}
}

// MilestoneChangedEvent is the payload of the milestone pointer events.
type MilestoneChangedEvent struct {
	PreviousIndex uint32
	Index         uint32
	Hash          ternary.Hash
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
