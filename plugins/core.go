package plugins

import (
	"github.com/iotaledger/hive.go/node"

	"github.com/iotaledger/tanglenode/plugins/cli"
	"github.com/iotaledger/tanglenode/plugins/config"
	"github.com/iotaledger/tanglenode/plugins/database"
	"github.com/iotaledger/tanglenode/plugins/gracefulshutdown"
	"github.com/iotaledger/tanglenode/plugins/ledger"
	"github.com/iotaledger/tanglenode/plugins/logger"
	"github.com/iotaledger/tanglenode/plugins/milestonetracker"
	"github.com/iotaledger/tanglenode/plugins/prometheus"
	"github.com/iotaledger/tanglenode/plugins/tangle"
	"github.com/iotaledger/tanglenode/plugins/tipselection"
	"github.com/iotaledger/tanglenode/plugins/zeromq"
)

// Core contains the core plugins of a node.
var Core = node.Plugins(
	config.Plugin,
	logger.Plugin,
	cli.Plugin,
	gracefulshutdown.Plugin,
	database.Plugin,
	tangle.Plugin,
	ledger.Plugin,
	milestonetracker.Plugin,
	tipselection.Plugin,
	zeromq.Plugin,
	prometheus.Plugin,
)
