package balances

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/ledger"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/plugins/webapi"
)

// PluginName is the name of the web API balances endpoint plugin.
const PluginName = "WebAPIBalancesEndpoint"

// ErrLedgerNotReady is returned while the ledger replays its state diffs.
var ErrLedgerNotReady = errors.New("ledger is not initialized yet")

type dependencies struct {
	dig.In

	Server *echo.Echo
	Ledger *ledger.Ledger
}

var (
	// Plugin is the plugin instance of the web API balances endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(_ *node.Plugin) {
	deps.Server.GET("/balances/:address", getBalance)
}

// getBalance returns the balance of the address confirmed by the latest solid milestone.
func getBalance(c echo.Context) error {
	address, err := ternary.HashFromTrytes(c.Param("address"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, webapi.NewErrorResponse(err))
	}
	if !deps.Ledger.IsReady() {
		return c.JSON(http.StatusServiceUnavailable, webapi.NewErrorResponse(ErrLedgerNotReady))
	}

	return c.JSON(http.StatusOK, jsonmodels.BalanceResponse{
		Address:       address.String(),
		Balance:       deps.Ledger.Balance(address),
		SnapshotIndex: deps.Ledger.SnapshotIndex(),
	})
}
