package info

import (
	"net/http"
	"sort"

	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/milestone"
	"github.com/iotaledger/tanglenode/packages/requester"
	"github.com/iotaledger/tanglenode/packages/tipselection"
	"github.com/iotaledger/tanglenode/plugins/cli"
)

// PluginName is the name of the web API info endpoint plugin.
const PluginName = "WebAPIInfoEndpoint"

type dependencies struct {
	dig.In

	Server    *echo.Echo
	Tracker   *milestone.Tracker
	Ledger    *ledger.Ledger
	TipPool   *tipselection.TipPool
	Requester *requester.Requester
}

var (
	// Plugin is the plugin instance of the web API info endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(_ *node.Plugin) {
	deps.Server.GET("/info", getInfo)
}

// getInfo returns the info of the node
// e.g.,
// {
// 	"appName":"tanglenode",
// 	"version":"v0.1.0",
// 	"latestMilestoneIndex":1337,
// 	"latestMilestone":"EJCVIGCBM9...",
// 	"latestSolidMilestoneIndex":1336,
// 	"latestSolidMilestone":"QWELMNXFA9...",
// 	"ledgerReady":true,
// 	"ledgerSnapshotIndex":1336,
// 	"milestoneCandidatesAnalyzedPerMinute":12,
// 	"tips":42,
// 	"requests":0,
// 	"enabledPlugins":[
// 		"CLI",
// 		"Config",
// 		"Database",
// 		"Ledger",
// 		"Logger",
// 		"MilestoneTracker",
// 		"Tangle",
// 		"WebAPI",
// 		"WebAPIInfoEndpoint"
// 	],
// 	"disabledPlugins":[
// 		"ZeroMQ"
// 	]
// }
func getInfo(c echo.Context) error {
	var enabledPlugins []string
	var disabledPlugins []string
	for pluginName, plugin := range node.GetPlugins() {
		if node.IsSkipped(plugin) {
			disabledPlugins = append(disabledPlugins, pluginName)
		} else {
			enabledPlugins = append(enabledPlugins, pluginName)
		}
	}

	sort.Strings(enabledPlugins)
	sort.Strings(disabledPlugins)

	snapshot := deps.Tracker.State().Snapshot()

	return c.JSON(http.StatusOK, jsonmodels.InfoResponse{
		AppName:                              cli.AppName,
		Version:                              cli.AppVersion,
		LatestMilestoneIndex:                 snapshot.LatestMilestoneIndex,
		LatestMilestone:                      snapshot.LatestMilestoneHash.String(),
		LatestSolidMilestoneIndex:            snapshot.LatestSolidMilestoneIndex,
		LatestSolidMilestone:                 snapshot.LatestSolidMilestoneHash.String(),
		LedgerReady:                          deps.Ledger.IsReady(),
		LedgerSnapshotIndex:                  deps.Ledger.SnapshotIndex(),
		MilestoneCandidatesAnalyzedPerMinute: deps.Tracker.CandidatesAnalyzedPerMinute(),
		Tips:                                 deps.TipPool.Size(),
		Requests:                             deps.Requester.Size(),
		EnabledPlugins:                       enabledPlugins,
		DisabledPlugins:                      disabledPlugins,
	})
}
