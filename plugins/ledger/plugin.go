// Package ledger is a plugin that loads the initial balances and provides the ledger of the node.
package ledger

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/shutdown"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/plugins/milestonetracker"
)

// PluginName is the name of the ledger plugin.
const PluginName = "Ledger"

type dependencies struct {
	dig.In

	Ledger *ledger.Ledger
}

var (
	// Plugin is the plugin instance of the ledger plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(newLedger); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newLedger(storage *tangle.Storage) *ledger.Ledger {
	balances := make(tangle.StateDiff)
	if Parameters.SnapshotFile != "" {
		var err error
		if balances, err = ledger.LoadSnapshotFile(Parameters.SnapshotFile); err != nil {
			Plugin.LogFatalf("Failed to load the snapshot: %s", err)
		}
		Plugin.LogInfof("Loaded %d addresses from %s", len(balances), Parameters.SnapshotFile)
	}

	return ledger.New(storage,
		ledger.WithInitialBalances(balances),
		ledger.WithStartIndex(milestonetracker.Parameters.StartIndex),
		ledger.WithLogger(logger.NewLogger(PluginName)),
	)
}

func configure(plugin *node.Plugin) {
	plugin.LogInfof("Ledger starts at milestone %d", milestonetracker.Parameters.StartIndex)
}

// run initializes the ledger in the background, the milestone tracker applies milestones once it is ready.
func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		plugin.LogInfo("Initializing ledger ...")
		if err := deps.Ledger.Init(ctx); err != nil {
			if ctx.Err() == nil {
				plugin.LogFatalf("Failed to initialize the ledger: %s", err)
			}
			return
		}
		plugin.LogInfof("Initializing ledger ... done, snapshot index %d", deps.Ledger.SnapshotIndex())

		<-ctx.Done()
	}, shutdown.PriorityLedger); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}
