package client

import (
	"net/http"
	"strconv"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
)

const (
	routeInfo            = "/info"
	routeHealthz         = "/healthz"
	routeMilestones      = "/milestones/"
	routeLatestMilestone = "/milestones/latest"
)

// Info gets the info of the node.
func (api *NodeAPI) Info() (*jsonmodels.InfoResponse, error) {
	res := &jsonmodels.InfoResponse{}
	if err := api.do(http.MethodGet, routeInfo, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Healthy returns true if the node finished starting up and its ledger is ready.
func (api *NodeAPI) Healthy() (bool, error) {
	res, err := api.client.R().Get(routeHealthz)
	if err != nil {
		return false, err
	}

	return res.StatusCode() == http.StatusOK, nil
}

// Milestone gets the milestone with the given index.
func (api *NodeAPI) Milestone(index uint32) (*jsonmodels.MilestoneResponse, error) {
	res := &jsonmodels.MilestoneResponse{}
	if err := api.do(http.MethodGet, routeMilestones+strconv.FormatUint(uint64(index), 10), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// LatestMilestone gets the milestone with the highest index that the node stored.
func (api *NodeAPI) LatestMilestone() (*jsonmodels.MilestoneResponse, error) {
	res := &jsonmodels.MilestoneResponse{}
	if err := api.do(http.MethodGet, routeLatestMilestone, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}
