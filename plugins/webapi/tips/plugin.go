package tips

import (
	"net/http"

	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/tipselection"
	"github.com/iotaledger/tanglenode/plugins/webapi"
)

// PluginName is the name of the web API tips endpoint plugin.
const PluginName = "WebAPITipsEndpoint"

type dependencies struct {
	dig.In

	Server  *echo.Echo
	TipPool *tipselection.TipPool
	Factory *tipselection.Factory
}

var (
	// Plugin is the plugin instance of the web API tips endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(_ *node.Plugin) {
	deps.Server.GET("/tips", getTips)
	deps.Server.GET("/tips/:hash/valid", getTipValidity)
}

// getTips returns the solid transactions that are not approved yet.
func getTips(c echo.Context) error {
	tips := deps.TipPool.Tips()

	response := jsonmodels.TipsResponse{Tips: make([]string, len(tips))}
	for i, tip := range tips {
		response.Tips[i] = tip.String()
	}

	return c.JSON(http.StatusOK, response)
}

// getTipValidity runs the checks of a random walk against a single transaction.
func getTipValidity(c echo.Context) error {
	hash, err := ternary.HashFromTrytes(c.Param("hash"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, webapi.NewErrorResponse(err))
	}

	valid, reason, err := deps.Factory.CheckTip(hash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jsonmodels.TipValidityResponse{Hash: hash.String(), Error: err.Error()})
	}

	response := jsonmodels.TipValidityResponse{
		Hash:  hash.String(),
		Valid: valid,
	}
	if reason != nil {
		response.Reason = reason.Error()
	}

	return c.JSON(http.StatusOK, response)
}
