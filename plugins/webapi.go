package plugins

import (
	"github.com/iotaledger/hive.go/node"

	"github.com/iotaledger/tanglenode/plugins/webapi"
	"github.com/iotaledger/tanglenode/plugins/webapi/balances"
	"github.com/iotaledger/tanglenode/plugins/webapi/healthz"
	"github.com/iotaledger/tanglenode/plugins/webapi/info"
	"github.com/iotaledger/tanglenode/plugins/webapi/milestones"
	"github.com/iotaledger/tanglenode/plugins/webapi/tips"
	"github.com/iotaledger/tanglenode/plugins/webapi/transactions"
	"github.com/iotaledger/tanglenode/plugins/webapi/websocket"
)

// WebAPI contains the webapi endpoint plugins of a node.
var WebAPI = node.Plugins(
	webapi.Plugin,
	balances.Plugin,
	healthz.Plugin,
	info.Plugin,
	milestones.Plugin,
	tips.Plugin,
	transactions.Plugin,
	websocket.Plugin,
)
