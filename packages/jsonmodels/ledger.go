package jsonmodels

// BalanceResponse is the HTTP response containing the confirmed balance of an address.
type BalanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
	// SnapshotIndex is the milestone the balance belongs to.
	SnapshotIndex uint32 `json:"snapshotIndex"`
	Error         string `json:"error,omitempty"`
}
