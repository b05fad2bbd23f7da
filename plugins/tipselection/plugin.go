// Package tipselection is a plugin that keeps track of the tips and provides the validation used by the random walks.
package tipselection

import (
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/tipselection"
)

// PluginName is the name of the tip selection plugin.
const PluginName = "TipSelection"

type dependencies struct {
	dig.In

	Storage *tangle.Storage
	TipPool *tipselection.TipPool
}

var (
	// Plugin is the plugin instance of the tip selection plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)

	Plugin.Events.Init.Attach(events.NewClosure(func(_ *node.Plugin, container *dig.Container) {
		if err := container.Provide(tipselection.NewTipPool); err != nil {
			Plugin.Panic(err)
		}

		if err := container.Provide(newFactory); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func configure(plugin *node.Plugin) {
	deps.Storage.Events.TransactionSolid.Hook(event.NewClosure(func(hash ternary.Hash) {
		// a solid transaction with approvers is not a tip anymore
		approvers, err := deps.Storage.Approvers(hash)
		if err != nil {
			plugin.LogErrorf("Failed to load approvers of %s: %s", hash, err)
			return
		}
		if len(approvers) != 0 {
			return
		}

		tx, err := deps.Storage.Transaction(hash)
		if err != nil {
			plugin.LogErrorf("Failed to load transaction %s: %s", hash, err)
			return
		}
		deps.TipPool.AddTip(tx)
	}))
}

func newFactory(storage *tangle.Storage, ledgerInstance *ledger.Ledger, tracker *milestone.Tracker) *tipselection.Factory {
	return tipselection.NewFactory(storage, ledgerInstance, tracker.State(),
		tipselection.WithMaxDepth(Parameters.MaxDepth),
		tipselection.WithBelowMaxDepthTransactionLimit(Parameters.BelowMaxDepthTransactionLimit),
		tipselection.WithLogger(logger.NewLogger(PluginName)),
	)
}
