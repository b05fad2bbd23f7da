// Package milestonetracker is a plugin that follows the milestones issued by the coordinator and applies them to the
// ledger.
package milestonetracker

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/iotaledger/iota.go/trinary"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/shutdown"
	"github.com/iotaledger/tanglenode/packages/sponge"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
)

// PluginName is the name of the milestone tracker plugin.
const PluginName = "MilestoneTracker"

type dependencies struct {
	dig.In

	Tracker *milestone.Tracker
}

var (
	// Plugin is the plugin instance of the milestone tracker plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(newValidator); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(newTracker); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func configure(plugin *node.Plugin) {
	deps.Tracker.Events.SolidMilestoneChanged.Hook(event.NewClosure(func(changed *milestone.MilestoneChangedEvent) {
		if latest := deps.Tracker.State().LatestMilestoneIndex(); changed.Index < latest {
			plugin.LogInfof("Synchronizing: solid milestone %d of %d", changed.Index, latest)
		}
	}))
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		plugin.LogInfof("Tracking milestones of %s", Parameters.Coordinator)
		deps.Tracker.Run(ctx)
		plugin.LogInfof("Stopped tracking milestones at %s", deps.Tracker.State().Snapshot())
	}, shutdown.PriorityMilestoneTracker); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

func newValidator(storage *tangle.Storage) *milestone.Validator {
	coordinator, err := ternary.HashFromTrytes(trinary.Trytes(Parameters.Coordinator))
	if err != nil {
		Plugin.LogFatalf("Invalid coordinator address %s: %s", Parameters.Coordinator, err)
	}
	mode, err := sponge.ParseMode(Parameters.SignatureMode)
	if err != nil {
		Plugin.LogFatalf("Invalid coordinator signature mode: %s", err)
	}

	var opts []milestone.ValidatorOption
	if Parameters.Testnet {
		opts = append(opts, milestone.WithTestnet(Parameters.DontValidateTestnetMilestoneSig))
	}

	validator, err := milestone.NewValidator(storage, coordinator, Parameters.SecurityLevel, Parameters.NumberOfKeysInMilestone, mode, opts...)
	if err != nil {
		Plugin.LogFatalf("Failed to create the milestone validator: %s", err)
	}

	return validator
}

func newTracker(storage *tangle.Storage, validator *milestone.Validator, solidifier *tangle.Solidifier, ledgerInstance *ledger.Ledger) *milestone.Tracker {
	return milestone.NewTracker(storage, validator, solidifier, ledgerInstance,
		milestone.WithStartIndex(Parameters.StartIndex),
		milestone.WithRescanInterval(Parameters.RescanInterval),
		milestone.WithLedgerPollInterval(Parameters.LedgerPollInterval),
		milestone.WithLogger(logger.NewLogger(PluginName)),
	)
}
