package milestones

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/plugins/webapi"
)

// PluginName is the name of the web API milestones endpoint plugin.
const PluginName = "WebAPIMilestonesEndpoint"

type dependencies struct {
	dig.In

	Server  *echo.Echo
	Storage *tangle.Storage
}

var (
	// Plugin is the plugin instance of the web API milestones endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(_ *node.Plugin) {
	deps.Server.GET("/milestones/latest", getLatestMilestone)
	deps.Server.GET("/milestones/:index", getMilestone)
}

// getMilestone returns the tail hash of the milestone with the given index.
func getMilestone(c echo.Context) error {
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, webapi.NewErrorResponse(errors.Errorf("invalid milestone index %q", c.Param("index"))))
	}

	milestone, err := deps.Storage.Milestone(uint32(index))
	if err != nil {
		if errors.Is(err, tangle.ErrMilestoneNotFound) {
			return c.JSON(http.StatusNotFound, webapi.NewErrorResponse(err))
		}
		return c.JSON(http.StatusInternalServerError, webapi.NewErrorResponse(err))
	}

	return c.JSON(http.StatusOK, jsonmodels.MilestoneResponse{
		Index: milestone.Index,
		Hash:  milestone.Hash.String(),
	})
}

// getLatestMilestone returns the stored milestone with the highest index.
func getLatestMilestone(c echo.Context) error {
	milestone, err := deps.Storage.LatestMilestone()
	if err != nil {
		if errors.Is(err, tangle.ErrMilestoneNotFound) {
			return c.JSON(http.StatusNotFound, webapi.NewErrorResponse(err))
		}
		return c.JSON(http.StatusInternalServerError, webapi.NewErrorResponse(err))
	}

	return c.JSON(http.StatusOK, jsonmodels.MilestoneResponse{
		Index: milestone.Index,
		Hash:  milestone.Hash.String(),
	})
}
