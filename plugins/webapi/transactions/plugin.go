package transactions

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	"go.uber.org/dig"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/requester"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// PluginName is the name of the web API transactions endpoint plugin.
const PluginName = "WebAPITransactionsEndpoint"

// maxTransactionsPerRequest limits how many transactions a single request may submit.
const maxTransactionsPerRequest = 1000

type dependencies struct {
	dig.In

	Server    *echo.Echo
	Processor *tangle.Processor
	Requester *requester.Requester
}

var (
	// Plugin is the plugin instance of the web API transactions endpoint plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure)
}

func configure(_ *node.Plugin) {
	deps.Server.POST("/transactions", storeTransactions)
	deps.Server.GET("/missing", getMissing)
}

// storeTransactions parses and stores the submitted transactions. The request is rejected as a whole if one of them is
// malformed, transactions preceding the malformed one stay stored.
func storeTransactions(c echo.Context) error {
	var request jsonmodels.StoreTransactionsRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, jsonmodels.StoreTransactionsResponse{Error: err.Error()})
	}
	if len(request.Trytes) == 0 {
		return c.JSON(http.StatusBadRequest, jsonmodels.StoreTransactionsResponse{Error: "no transactions submitted"})
	}
	if len(request.Trytes) > maxTransactionsPerRequest {
		return c.JSON(http.StatusBadRequest, jsonmodels.StoreTransactionsResponse{
			Error: errors.Errorf("at most %d transactions per request", maxTransactionsPerRequest).Error(),
		})
	}

	response := jsonmodels.StoreTransactionsResponse{Hashes: make([]string, 0, len(request.Trytes))}
	for i, trytes := range request.Trytes {
		tx, stored, err := deps.Processor.ProcessTrytes(trytes)
		if err != nil {
			response.Error = errors.Wrapf(err, "transaction %d", i).Error()
			if errors.Is(err, transaction.ErrMalformedTransaction) {
				return c.JSON(http.StatusBadRequest, response)
			}
			return c.JSON(http.StatusInternalServerError, response)
		}

		response.Hashes = append(response.Hashes, tx.Hash().String())
		if stored {
			response.Stored++
		}
	}

	return c.JSON(http.StatusOK, response)
}

// getMissing returns the transactions that are referenced but not stored locally.
func getMissing(c echo.Context) error {
	requests := deps.Requester.Requests()

	response := jsonmodels.MissingResponse{
		Transactions: make([]jsonmodels.MissingTransaction, len(requests)),
		Count:        len(requests),
	}
	for i, request := range requests {
		response.Transactions[i] = jsonmodels.MissingTransaction{
			Hash:      request.Hash.String(),
			Milestone: request.Milestone,
			Since:     request.Since.Unix(),
		}
	}

	return c.JSON(http.StatusOK, response)
}
