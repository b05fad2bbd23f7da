package websocket

import (
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/notification"
	"github.com/iotaledger/tanglenode/packages/tangle"
)

// PluginName is the name of the web API websocket endpoint plugin.
const PluginName = "WebAPIWebSocketEndpoint"

type dependencies struct {
	dig.In

	Server  *echo.Echo
	Tracker *milestone.Tracker
	Storage *tangle.Storage
}

var (
	// Plugin is the plugin instance of the web API websocket endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)

	hub *notification.WebSocketHub
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(plugin *node.Plugin) {
	hub = notification.NewWebSocketHub(logger.NewLogger(plugin.Name))

	notification.AttachTracker(deps.Tracker.Events, hub)
	if Parameters.PublishTransactions {
		notification.AttachStorage(deps.Storage.Events, hub)
	}

	deps.Server.GET("/ws", echo.WrapHandler(hub))
}
