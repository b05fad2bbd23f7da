// Package notification publishes the changes of the milestone pointers to external subscribers.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/iotaledger/hive.go/generics/event"

	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

const (
	// TopicLatestMilestoneIndex announces a new latest milestone as "lmi <previous index> <index>".
	TopicLatestMilestoneIndex = "lmi"
	// TopicLatestSolidMilestoneIndex announces a new latest solid milestone as "lmsi <previous index> <index>".
	TopicLatestSolidMilestoneIndex = "lmsi"
	// TopicLatestSolidMilestoneHash announces the hash of a new latest solid milestone as "lmhs <hash>".
	TopicLatestSolidMilestoneHash = "lmhs"
	// TopicTransaction announces a newly stored transaction as
	// "tx <hash> <address> <value> <obsolete tag> <timestamp> <current index> <last index> <bundle> <trunk> <branch> <arrival time> <tag>".
	TopicTransaction = "tx"
)

// Publisher delivers notifications. Publishing is best effort and must never block the caller.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Line formats a notification as the topic followed by the space separated arguments.
func Line(topic string, args ...interface{}) string {
	var builder strings.Builder
	builder.WriteString(topic)
	for _, arg := range args {
		builder.WriteByte(' ')
		fmt.Fprint(&builder, arg)
	}

	return builder.String()
}

// AttachTracker publishes the milestone pointer changes of a milestone.Tracker.
func AttachTracker(events *milestone.Events, publisher Publisher) {
	events.LatestMilestoneChanged.Hook(event.NewClosure(func(changed *milestone.MilestoneChangedEvent) {
		publisher.Publish(TopicLatestMilestoneIndex, changed.PreviousIndex, changed.Index)
	}))

	events.SolidMilestoneChanged.Hook(event.NewClosure(func(changed *milestone.MilestoneChangedEvent) {
		publisher.Publish(TopicLatestSolidMilestoneIndex, changed.PreviousIndex, changed.Index)
		publisher.Publish(TopicLatestSolidMilestoneHash, changed.Hash)
	}))
}

// AttachStorage publishes the transactions persisted by a tangle.Storage.
func AttachStorage(events *tangle.Events, publisher Publisher) {
	events.TransactionStored.Hook(event.NewClosure(func(tx *transaction.Transaction) {
		publisher.Publish(TopicTransaction,
			tx.Hash(),
			tx.Address(),
			tx.Value(),
			tx.ObsoleteTag(),
			tx.Timestamp(),
			tx.CurrentIndex(),
			tx.LastIndex(),
			tx.Bundle(),
			tx.Trunk(),
			tx.Branch(),
			time.Now().Unix(),
			tx.Tag(),
		)
	}))
}

// MultiPublisher hands every notification to all of its Publishers.
type MultiPublisher []Publisher

// Publish forwards the notification.
func (m MultiPublisher) Publish(topic string, args ...interface{}) {
	for _, publisher := range m {
		publisher.Publish(topic, args...)
	}
}
