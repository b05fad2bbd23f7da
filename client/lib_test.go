package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
)

func newTestServer(t *testing.T) *NodeAPI {
	server := echo.New()
	server.GET(routeInfo, func(c echo.Context) error {
		return c.JSON(http.StatusOK, jsonmodels.InfoResponse{AppName: "tanglenode", LatestMilestoneIndex: 12, LatestSolidMilestoneIndex: 10})
	})
	server.GET(routeHealthz, func(c echo.Context) error {
		return c.NoContent(http.StatusServiceUnavailable)
	})
	server.GET("/milestones/:index", func(c echo.Context) error {
		if c.Param("index") != "10" {
			return c.JSON(http.StatusNotFound, errorresponse{Error: "milestone not found"})
		}
		return c.JSON(http.StatusOK, jsonmodels.MilestoneResponse{Index: 10, Hash: "MILESTONE"})
	})
	server.POST(routeTransactions, func(c echo.Context) error {
		var request jsonmodels.StoreTransactionsRequest
		if err := c.Bind(&request); err != nil {
			return c.JSON(http.StatusBadRequest, errorresponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, jsonmodels.StoreTransactionsResponse{Hashes: request.Trytes, Stored: len(request.Trytes)})
	})
	server.GET("/balances/:address", func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, errorresponse{Error: "ledger is not initialized yet"})
	})
	server.GET("/tips/:hash/valid", func(c echo.Context) error {
		return c.JSON(http.StatusOK, jsonmodels.TipValidityResponse{Hash: c.Param("hash"), Reason: "transaction is not solid"})
	})

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)

	return NewNodeAPI(httpServer.URL)
}

func TestNodeAPI(t *testing.T) {
	api := newTestServer(t)

	info, err := api.Info()
	require.NoError(t, err)
	assert.Equal(t, "tanglenode", info.AppName)
	assert.EqualValues(t, 12, info.LatestMilestoneIndex)
	assert.EqualValues(t, 10, info.LatestSolidMilestoneIndex)

	healthy, err := api.Healthy()
	require.NoError(t, err)
	assert.False(t, healthy)

	milestone, err := api.Milestone(10)
	require.NoError(t, err)
	assert.Equal(t, "MILESTONE", milestone.Hash)

	_, err = api.Milestone(11)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := api.StoreTransactions("A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, stored.Hashes)
	assert.Equal(t, 2, stored.Stored)

	_, err = api.Balance("ADDRESS")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "ledger is not initialized yet")

	validity, err := api.IsTipValid("TIP")
	require.NoError(t, err)
	assert.False(t, validity.Valid)
	assert.Equal(t, "transaction is not solid", validity.Reason)
}
