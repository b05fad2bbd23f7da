// Package tangle is a plugin that provides the tangle storage, the solidity checks and the requests for missing
// transactions.
package tangle

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/requester"
	"github.com/iotaledger/tanglenode/packages/shutdown"
	"github.com/iotaledger/tanglenode/packages/tangle"
)

// PluginName is the name of the tangle plugin.
const PluginName = "Tangle"

type dependencies struct {
	dig.In

	Storage   *tangle.Storage
	Processor *tangle.Processor
	Requester *requester.Requester
}

var (
	// Plugin is the plugin instance of the tangle plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(newStorage); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(newSolidifier); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(newProcessor); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(newRequester); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func configure(plugin *node.Plugin) {
	deps.Requester.Attach(deps.Storage)

	deps.Storage.Events.TransactionMissing.Hook(event.NewClosure(func(missing *tangle.TransactionMissingEvent) {
		if missing.Milestone {
			plugin.LogDebugf("milestone solidification is waiting for %s", missing.Hash)
		}
	}))
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		<-ctx.Done()

		plugin.LogInfo("Stopping Tangle ...")
		deps.Processor.Shutdown()
		deps.Requester.Detach(deps.Storage)
		if err := deps.Requester.Shutdown(); err != nil {
			plugin.LogErrorf("Failed to stop the requester: %s", err)
		}
		plugin.LogInfo("Stopping Tangle ... done")
	}, shutdown.PriorityTangle); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}

func newStorage(store kvstore.KVStore) *tangle.Storage {
	storage, err := tangle.NewStorage(store, tangle.WithTransactionCacheSize(Parameters.TransactionCacheSize))
	if err != nil {
		Plugin.LogFatalf("Failed to open the tangle storage: %s", err)
	}

	if latest, err := storage.LatestMilestone(); err == nil {
		Plugin.LogInfof("Latest stored milestone: %s", latest)
	}

	return storage
}

func newSolidifier(storage *tangle.Storage) *tangle.Solidifier {
	return tangle.NewSolidifier(storage, Parameters.MaxAnalyzedTransactions)
}

func newProcessor(storage *tangle.Storage, solidifier *tangle.Solidifier) *tangle.Processor {
	processor, err := tangle.NewProcessor(storage, solidifier,
		tangle.WithWorkerCount(Parameters.SolidifierWorkerCount),
		tangle.WithQueueSize(Parameters.SolidifierQueueSize),
		tangle.WithLogger(logger.NewLogger("Processor")),
	)
	if err != nil {
		Plugin.Panic(err)
	}

	return processor
}

func newRequester() *requester.Requester {
	transactionRequester, err := requester.New(Parameters.RequestTTL)
	if err != nil {
		Plugin.Panic(err)
	}

	return transactionRequester
}
