package client

import (
	"net/http"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
)

const (
	routeTips         = "/tips"
	routeTransactions = "/transactions"
	routeMissing      = "/missing"
	routeBalances     = "/balances/"
)

// Tips gets the current tips of the node.
func (api *NodeAPI) Tips() ([]string, error) {
	res := &jsonmodels.TipsResponse{}
	if err := api.do(http.MethodGet, routeTips, nil, res); err != nil {
		return nil, err
	}
	return res.Tips, nil
}

// IsTipValid checks whether a random walk may end in the transaction with the given hash.
func (api *NodeAPI) IsTipValid(hash string) (*jsonmodels.TipValidityResponse, error) {
	res := &jsonmodels.TipValidityResponse{}
	if err := api.do(http.MethodGet, routeTips+"/"+hash+"/valid", nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// StoreTransactions submits the transactions given by their trytes and returns their hashes.
func (api *NodeAPI) StoreTransactions(trytes ...string) (*jsonmodels.StoreTransactionsResponse, error) {
	res := &jsonmodels.StoreTransactionsResponse{}
	if err := api.do(http.MethodPost, routeTransactions, &jsonmodels.StoreTransactionsRequest{Trytes: trytes}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Missing gets the transactions that the node knows about but has not stored yet.
func (api *NodeAPI) Missing() (*jsonmodels.MissingResponse, error) {
	res := &jsonmodels.MissingResponse{}
	if err := api.do(http.MethodGet, routeMissing, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Balance gets the confirmed balance of the address.
func (api *NodeAPI) Balance(address string) (*jsonmodels.BalanceResponse, error) {
	res := &jsonmodels.BalanceResponse{}
	if err := api.do(http.MethodGet, routeBalances+address, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}
