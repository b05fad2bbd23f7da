// Package zeromq is a plugin that publishes the milestone changes and the stored transactions on a ZeroMQ socket.
package zeromq

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/notification"
	"github.com/iotaledger/tanglenode/packages/shutdown"
	"github.com/iotaledger/tanglenode/packages/tangle"
)

// PluginName is the name of the zeromq plugin.
const PluginName = "ZeroMQ"

type dependencies struct {
	dig.In

	Storage *tangle.Storage
	Tracker *milestone.Tracker
}

var (
	// Plugin is the plugin instance of the zeromq plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)

	publisher *notification.ZMQPublisher
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Disabled, configure, run)
}

func configure(plugin *node.Plugin) {
	var err error
	if publisher, err = notification.NewZMQPublisher(Parameters.BindAddress,
		notification.WithWorkerCount(Parameters.WorkerCount),
		notification.WithQueueSize(Parameters.QueueSize),
		notification.WithLogger(logger.NewLogger(PluginName)),
	); err != nil {
		plugin.LogFatalf("Failed to start the ZeroMQ publisher: %s", err)
	}

	notification.AttachTracker(deps.Tracker.Events, publisher)
	if Parameters.PublishTransactions {
		notification.AttachStorage(deps.Storage.Events, publisher)
	}
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		plugin.LogInfof("Publishing notifications on %s", Parameters.BindAddress)
		<-ctx.Done()

		plugin.LogInfo("Stopping ZeroMQ Publisher ...")
		if err := publisher.Shutdown(); err != nil {
			plugin.LogErrorf("Stopping ZeroMQ Publisher: %s", err)
			return
		}
		plugin.LogInfo("Stopping ZeroMQ Publisher ... done")
	}, shutdown.PriorityNotification); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}
