// Package jsonmodels contains the request and response models of the web API.
package jsonmodels

// InfoResponse holds the information about the node and its consensus state.
type InfoResponse struct {
	// name of the node software
	AppName string `json:"appName,omitempty"`
	// version of the node software
	Version string `json:"version,omitempty"`
	// index of the latest milestone
	LatestMilestoneIndex uint32 `json:"latestMilestoneIndex"`
	// hash of the latest milestone
	LatestMilestone string `json:"latestMilestone,omitempty"`
	// index of the latest solid milestone
	LatestSolidMilestoneIndex uint32 `json:"latestSolidMilestoneIndex"`
	// hash of the latest solid milestone
	LatestSolidMilestone string `json:"latestSolidMilestone,omitempty"`
	// whether the ledger finished its initialization
	LedgerReady bool `json:"ledgerReady"`
	// index of the last milestone applied to the ledger
	LedgerSnapshotIndex uint32 `json:"ledgerSnapshotIndex"`
	// number of milestone candidates validated during the last minute
	MilestoneCandidatesAnalyzedPerMinute int64 `json:"milestoneCandidatesAnalyzedPerMinute"`
	// number of tips
	Tips int `json:"tips"`
	// number of missing transactions
	Requests int `json:"requests"`
	// list of enabled plugins
	EnabledPlugins []string `json:"enabledPlugins,omitempty"`
	// list of disabled plugins
	DisabledPlugins []string `json:"disabledPlugins,omitempty"`
	Error           string   `json:"error,omitempty"`
}
