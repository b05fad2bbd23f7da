package jsonmodels

// MilestoneResponse is the HTTP response of a milestone lookup.
type MilestoneResponse struct {
	Index uint32 `json:"index"`
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

// TipValidityResponse is the HTTP response of a tip validation.
type TipValidityResponse struct {
	Hash  string `json:"hash"`
	Valid bool   `json:"valid"`
	// Reason names the check that rejected the tip.
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TipsResponse is the HTTP response containing the current tips.
type TipsResponse struct {
	Tips  []string `json:"tips"`
	Error string   `json:"error,omitempty"`
}

// MissingTransaction is a transaction that is referenced but not stored locally.
type MissingTransaction struct {
	Hash      string `json:"hash"`
	Milestone bool   `json:"milestone,omitempty"`
	// Since is the unix time at which the transaction was first reported missing.
	Since int64 `json:"since"`
}

// MissingResponse is the HTTP response containing all missing transactions.
type MissingResponse struct {
	Transactions []MissingTransaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// StoreTransactionsRequest holds the trytes of the transactions to store.
type StoreTransactionsRequest struct {
	Trytes []string `json:"trytes"`
}

// StoreTransactionsResponse is the HTTP response of storing transactions.
type StoreTransactionsResponse struct {
	// Hashes contains the hashes of the submitted transactions in request order.
	Hashes []string `json:"hashes,omitempty"`
	// Stored counts the transactions that were not known before.
	Stored int    `json:"stored"`
	Error  string `json:"error,omitempty"`
}
